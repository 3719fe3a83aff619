package web

import (
	"net/http"
	"sync"
	"time"

	"volunteerdesk/internal/adapters/http/middleware"
	"volunteerdesk/internal/application/liststate"
	"volunteerdesk/internal/domain/volunteer"
)

// DefaultWorkspaceIdle is how long an unused workspace is kept.
const DefaultWorkspaceIdle = 12 * time.Hour

// sweepInterval bounds how often expired workspaces are looked for.
const sweepInterval = time.Minute

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind string // "success" or "error"
	Text string
}

// EmailDraft keeps the compose form filled in until a send succeeds.
type EmailDraft struct {
	Subject string
	Message string
}

// Workspace is the server-side view state of one browser: both admin lists,
// their detail inspectors, and the pending flash message.
type Workspace struct {
	Applications      *liststate.Controller[volunteer.Application]
	Volunteers        *liststate.Controller[volunteer.Volunteer]
	ApplicationDetail liststate.Inspector[volunteer.Application]
	VolunteerDetail   liststate.Inspector[volunteer.Volunteer]

	mu    sync.Mutex
	flash *Flash
	draft EmailDraft
}

// NewWorkspace creates a workspace whose lists load through gw.
func NewWorkspace(gw Gateway) *Workspace {
	return &Workspace{
		Applications: liststate.New("applications", liststate.Loader[volunteer.Application](gw.ListApplications)),
		Volunteers:   liststate.New("volunteers", liststate.Loader[volunteer.Volunteer](gw.ListVolunteers)),
	}
}

// SetFlash replaces the pending message.
func (w *Workspace) SetFlash(kind, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flash = &Flash{Kind: kind, Text: text}
}

// TakeFlash returns the pending message and clears it.
func (w *Workspace) TakeFlash() *Flash {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.flash
	w.flash = nil
	return f
}

// Draft returns the email being composed.
func (w *Workspace) Draft() EmailDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// SetDraft stores the email being composed.
func (w *Workspace) SetDraft(d EmailDraft) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = d
}

type workspaceEntry struct {
	ws       *Workspace
	lastSeen time.Time
}

// WorkspaceStore is an in-memory workspace store keyed by view-session token.
type WorkspaceStore struct {
	mu        sync.Mutex
	entries   map[string]*workspaceEntry
	idle      time.Duration
	lastSweep time.Time
	factory   func() *Workspace
	now       func() time.Time
}

// NewWorkspaceStore creates a store whose workspaces expire after idle without use.
// PRE: factory is non-nil
func NewWorkspaceStore(idle time.Duration, factory func() *Workspace) *WorkspaceStore {
	return &WorkspaceStore{
		entries: make(map[string]*workspaceEntry),
		idle:    idle,
		factory: factory,
		now:     time.Now,
	}
}

// Get returns the workspace for token, creating a fresh one if none is live.
// PRE: token is non-empty
// POST: The returned workspace is marked as used now; expired workspaces are dropped
func (s *WorkspaceStore) Get(token string) *Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweepLocked(now)
		s.lastSweep = now
	}

	e, ok := s.entries[token]
	if ok && now.Sub(e.lastSeen) > s.idle {
		delete(s.entries, token)
		ok = false
	}
	if !ok {
		e = &workspaceEntry{ws: s.factory()}
		s.entries[token] = e
	}
	e.lastSeen = now
	return e.ws
}

// Len returns the number of live workspaces.
func (s *WorkspaceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *WorkspaceStore) sweepLocked(now time.Time) {
	for token, e := range s.entries {
		if now.Sub(e.lastSeen) > s.idle {
			delete(s.entries, token)
		}
	}
}

// workspaceFor returns the workspace of the requesting browser.
// PRE: the ViewSession middleware ran for r
func workspaceFor(r *http.Request) *Workspace {
	token, ok := middleware.ViewSessionFromContext(r.Context())
	if !ok {
		// Only reachable when a handler is mounted without ViewSession.
		token = "anonymous"
	}
	return workspaces.Get(token)
}
