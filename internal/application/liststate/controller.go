// Package liststate holds the in-memory state behind an admin list view:
// the loaded collection, the search/role/page view state, and a selection
// set that is independent of filtering and pagination.
package liststate

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"volunteerdesk/internal/application/listutil"
	"volunteerdesk/internal/domain/volunteer"
)

const loadKey = "load"

// Record is the behaviour a list item needs for search, role filtering and selection.
type Record interface {
	RecordID() string
	RecordName() string
	RecordEmail() string
	RecordRole() volunteer.Role
}

// Loader fetches the full collection from the remote service.
type Loader[T Record] func(ctx context.Context) ([]T, error)

// ViewState is the search term, role filter and current page of a list.
type ViewState struct {
	SearchTerm string
	RoleFilter volunteer.Role // zero value means no filter
	Page       int            // 1-indexed
}

// Row is one visible item with its selection flag.
type Row[T Record] struct {
	Item     T
	Selected bool
}

// Snapshot is an immutable copy of everything needed to render a list.
type Snapshot[T Record] struct {
	View          ViewState
	Rows          []Row[T]
	PageInfo      listutil.PageInfo
	TotalCount    int
	FilteredCount int
	SelectedCount int
	AllSelected   bool
	Loaded        bool
	Err           error
}

// Controller owns one list's collection, view state and selection set.
// It is safe for concurrent use; the loader always runs outside the lock.
type Controller[T Record] struct {
	name   string
	loader Loader[T]
	group  singleflight.Group

	mu         sync.Mutex
	items      []T
	view       ViewState
	selected   map[string]struct{}
	loaded     bool
	lastErr    error
	generation uint64 // last fetch started
	applied    uint64 // fetch whose result is currently shown
}

// New creates a controller that fetches its collection with loader.
// PRE: loader is non-nil
// POST: Returns an empty, not-yet-loaded controller on page 1
func New[T Record](name string, loader Loader[T]) *Controller[T] {
	return &Controller[T]{
		name:     name,
		loader:   loader,
		view:     ViewState{Page: 1},
		selected: make(map[string]struct{}),
	}
}

// Load fetches the collection and replaces the local copy.
// Concurrent calls share one in-flight fetch.
// PRE: none
// POST: On success the collection is the fetched one; on failure it is empty and LastError is set
func (c *Controller[T]) Load(ctx context.Context) error {
	// Joined callers must not inherit the first caller's cancellation.
	ctx = context.WithoutCancel(ctx)
	_, err, _ := c.group.Do(loadKey, func() (any, error) {
		return nil, c.fetch(ctx)
	})
	return err
}

// Refresh reloads after a mutation. It never joins a fetch that started
// before the call, so the result reflects the server state after the mutation.
// POST: Same as Load, and no older in-flight fetch can overwrite the result
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.group.Forget(loadKey)
	return c.Load(ctx)
}

func (c *Controller[T]) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	items, err := c.loader(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.applied {
		slog.Debug("list_load_discarded", "list", c.name, "generation", gen, "applied", c.applied)
		return err
	}
	c.applied = gen
	c.loaded = true
	if err != nil {
		slog.Error("list_load_failed", "list", c.name, "error", err)
		c.items = nil
		c.lastErr = err
		return err
	}
	c.items = append([]T(nil), items...)
	c.lastErr = nil
	slog.Info("list_loaded", "list", c.name, "count", len(items))
	return nil
}

// Loaded reports whether at least one fetch has completed.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// LastError returns the error of the most recent applied fetch, or nil.
func (c *Controller[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// View returns the stored view state.
func (c *Controller[T]) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SetSearchTerm changes the search term and returns to page 1.
func (c *Controller[T]) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SearchTerm = term
	c.view.Page = 1
}

// SetRoleFilter changes the role filter (zero value clears it) and returns to page 1.
func (c *Controller[T]) SetRoleFilter(role volunteer.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.RoleFilter = role
	c.view.Page = 1
}

// SetPage moves to page n, clamped to [1, PageCount].
// POST: never errors; out-of-range requests land on the nearest valid page
func (c *Controller[T]) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Page = listutil.ClampPage(n, len(c.filteredLocked()))
}

// Filtered returns the items matching the view state, in collection order.
func (c *Controller[T]) Filtered() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filteredLocked()
}

// PageCount returns ceil(len(Filtered()) / PageSize).
func (c *Controller[T]) PageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return listutil.NewPageInfo(1, len(c.filteredLocked())).TotalPages
}

// Page returns the visible slice of the filtered list for the current (clamped) page.
func (c *Controller[T]) Page() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	filtered := c.filteredLocked()
	info := c.pageInfoLocked(len(filtered))
	return append([]T(nil), listutil.Slice(filtered, info)...)
}

// Find looks up an item in the current collection by identity.
func (c *Controller[T]) Find(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.RecordID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Toggle flips the selection of id.
func (c *Controller[T]) Toggle(id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return
	}
	c.selected[id] = struct{}{}
}

// SelectAll adds every id of the current filtered list to the selection.
// POST: ids selected earlier but hidden by the filter stay selected
func (c *Controller[T]) SelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.filteredLocked() {
		c.selected[item.RecordID()] = struct{}{}
	}
}

// Clear empties the selection.
func (c *Controller[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = make(map[string]struct{})
}

// Deselect removes the given ids from the selection.
func (c *Controller[T]) Deselect(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.selected, id)
	}
}

// IsSelected reports whether id is selected.
func (c *Controller[T]) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[id]
	return ok
}

// IsAllSelected reports whether the filtered list is non-empty and fully selected.
func (c *Controller[T]) IsAllSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allSelectedLocked(c.filteredLocked())
}

// SelectedIDs returns the selection in ascending order, including ids no longer in the collection.
func (c *Controller[T]) SelectedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectedCount returns the size of the selection.
func (c *Controller[T]) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

// Snapshot derives everything needed to render the current page.
// POST: the stored page is clamped if the page count shrank since it was set
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := c.filteredLocked()
	info := c.pageInfoLocked(len(filtered))
	c.view.Page = info.Page

	visible := listutil.Slice(filtered, info)
	rows := make([]Row[T], len(visible))
	for i, item := range visible {
		_, sel := c.selected[item.RecordID()]
		rows[i] = Row[T]{Item: item, Selected: sel}
	}
	return Snapshot[T]{
		View:          c.view,
		Rows:          rows,
		PageInfo:      info,
		TotalCount:    len(c.items),
		FilteredCount: len(filtered),
		SelectedCount: len(c.selected),
		AllSelected:   c.allSelectedLocked(filtered),
		Loaded:        c.loaded,
		Err:           c.lastErr,
	}
}

func (c *Controller[T]) pageInfoLocked(filteredLen int) listutil.PageInfo {
	return listutil.NewPageInfo(c.view.Page, filteredLen)
}

func (c *Controller[T]) allSelectedLocked(filtered []T) bool {
	if len(filtered) == 0 {
		return false
	}
	for _, item := range filtered {
		if _, ok := c.selected[item.RecordID()]; !ok {
			return false
		}
	}
	return true
}

func (c *Controller[T]) filteredLocked() []T {
	return Filter(c.items, c.view.SearchTerm, c.view.RoleFilter)
}

// Filter returns the items whose name or email contains term (case-insensitive)
// and whose role equals role when role is set. Order is preserved.
func Filter[T Record](items []T, term string, role volunteer.Role) []T {
	needle := strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if role != "" && item.RecordRole() != role {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(item.RecordName()), needle) &&
			!strings.Contains(strings.ToLower(item.RecordEmail()), needle) {
			continue
		}
		out = append(out, item)
	}
	return out
}
