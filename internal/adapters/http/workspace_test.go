package web

import (
	"testing"
	"time"
)

func newCountingStore(idle time.Duration) (*WorkspaceStore, *int, *time.Time) {
	created := 0
	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	s := NewWorkspaceStore(idle, func() *Workspace {
		created++
		return NewWorkspace(&fakeGateway{})
	})
	s.now = func() time.Time { return now }
	return s, &created, &now
}

func TestWorkspaceStore_SameTokenSameWorkspace(t *testing.T) {
	s, created, _ := newCountingStore(time.Hour)

	a := s.Get("token-a")
	if s.Get("token-a") != a {
		t.Error("same token returned a different workspace")
	}
	if s.Get("token-b") == a {
		t.Error("different tokens share a workspace")
	}
	if *created != 2 {
		t.Errorf("created %d workspaces, want 2", *created)
	}
}

func TestWorkspaceStore_IdleWorkspaceIsReplaced(t *testing.T) {
	s, _, now := newCountingStore(time.Hour)

	first := s.Get("token-a")
	first.Applications.SetSearchTerm("amal")

	*now = now.Add(59 * time.Minute)
	if s.Get("token-a") != first {
		t.Fatal("workspace expired before the idle timeout")
	}

	*now = now.Add(61 * time.Minute)
	second := s.Get("token-a")
	if second == first {
		t.Fatal("idle workspace was reused")
	}
	if got := second.Applications.View().SearchTerm; got != "" {
		t.Errorf("new workspace inherited search term %q", got)
	}
}

func TestWorkspaceStore_SweepsOtherExpiredWorkspaces(t *testing.T) {
	s, _, now := newCountingStore(time.Hour)
	s.Get("old-1")
	s.Get("old-2")

	*now = now.Add(2 * time.Hour)
	s.Get("fresh")

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1 after sweep", s.Len())
	}
}

func TestWorkspace_FlashIsOneShot(t *testing.T) {
	ws := NewWorkspace(&fakeGateway{})
	if ws.TakeFlash() != nil {
		t.Fatal("new workspace has a flash")
	}
	ws.SetFlash("error", "first")
	ws.SetFlash("success", "second")

	f := ws.TakeFlash()
	if f == nil || f.Kind != "success" || f.Text != "second" {
		t.Errorf("flash = %+v, want the latest one", f)
	}
	if ws.TakeFlash() != nil {
		t.Error("flash was shown twice")
	}
}
