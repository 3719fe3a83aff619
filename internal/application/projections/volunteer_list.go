package projections

import (
	"fmt"

	"volunteerdesk/internal/application/liststate"
	"volunteerdesk/internal/application/listutil"
	"volunteerdesk/internal/domain/volunteer"
)

// Placeholder is shown for optional values that are absent.
const Placeholder = "N/A"

// CVLinker builds the browser-facing CV link for a volunteer id.
type CVLinker interface {
	CVURL(id string) string
}

// Profiled is a list record that exposes its underlying volunteer.
type Profiled interface {
	liststate.Record
	Profile() volunteer.Volunteer
}

// VolunteerRow is one rendered table row.
type VolunteerRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	CVURL    string `json:"cvUrl,omitempty"`
	Selected bool   `json:"selected"`
}

// VolunteerListQuery carries the display inputs that are not part of the snapshot.
type VolunteerListQuery struct {
	EmptyText string // shown when the filtered list is empty
	LoadError string // shown instead of rows when the last load failed
}

// VolunteerListResult is the read model for an admin list page.
type VolunteerListResult struct {
	Rows          []VolunteerRow    `json:"rows"`
	Page          listutil.PageInfo `json:"page"`
	Search        string            `json:"search"`
	Role          string            `json:"role"`
	Roles         []string          `json:"roles"`
	TotalCount    int               `json:"totalCount"`
	FilteredCount int               `json:"filteredCount"`
	SelectedCount int               `json:"selectedCount"`
	AllSelected   bool              `json:"allSelected"`
	Summary       string            `json:"summary"`
	Message       string            `json:"message,omitempty"` // empty-state or load-failure text
	Failed        bool              `json:"failed"`
}

// QueryVolunteerList renders a list snapshot into table rows.
// PRE: snap was taken from a liststate.Controller
// POST: Phone shows Placeholder when absent; CVURL is set only for records with a CV
func QueryVolunteerList[T Profiled](snap liststate.Snapshot[T], query VolunteerListQuery, linker CVLinker) VolunteerListResult {
	roles := make([]string, len(volunteer.Roles))
	for i, r := range volunteer.Roles {
		roles[i] = string(r)
	}

	res := VolunteerListResult{
		Rows:          make([]VolunteerRow, 0, len(snap.Rows)),
		Page:          snap.PageInfo,
		Search:        snap.View.SearchTerm,
		Role:          string(snap.View.RoleFilter),
		Roles:         roles,
		TotalCount:    snap.TotalCount,
		FilteredCount: snap.FilteredCount,
		SelectedCount: snap.SelectedCount,
		AllSelected:   snap.AllSelected,
	}

	for _, row := range snap.Rows {
		v := row.Item.Profile()
		r := VolunteerRow{
			ID:       v.ID,
			Name:     v.Name,
			Email:    v.Email,
			Phone:    orPlaceholder(v.Phone),
			Role:     string(v.Role),
			Selected: row.Selected,
		}
		if v.HasCV() && linker != nil {
			r.CVURL = linker.CVURL(v.ID)
		}
		res.Rows = append(res.Rows, r)
	}

	switch {
	case snap.Err != nil:
		res.Failed = true
		res.Message = query.LoadError
	case snap.FilteredCount == 0:
		res.Message = query.EmptyText
	default:
		res.Summary = fmt.Sprintf("Showing %d–%d of %d", snap.PageInfo.StartRow(), snap.PageInfo.EndRow(), snap.FilteredCount)
	}
	return res
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
