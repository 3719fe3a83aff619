package projections

import (
	"context"
	"errors"
	"testing"

	"volunteerdesk/internal/application/liststate"
	"volunteerdesk/internal/domain/volunteer"
)

type fakeLinker struct{}

// CVURL returns a predictable link.
func (fakeLinker) CVURL(id string) string { return "https://api.test/cv/" + id }

func snapshotOf(t *testing.T, items []volunteer.Application, loadErr error) liststate.Snapshot[volunteer.Application] {
	t.Helper()
	c := liststate.New("test", func(context.Context) ([]volunteer.Application, error) {
		return items, loadErr
	})
	_ = c.Load(context.Background())
	return c.Snapshot()
}

func TestQueryVolunteerList_MissingPhoneShowsPlaceholder(t *testing.T) {
	snap := snapshotOf(t, []volunteer.Application{
		{Volunteer: volunteer.Volunteer{ID: "a1", Name: "Amal", Email: "a@x.com", Role: volunteer.RoleCooking}},
	}, nil)

	res := QueryVolunteerList(snap, VolunteerListQuery{EmptyText: "No pending applications found"}, fakeLinker{})
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.Name != "Amal" || row.Email != "a@x.com" || row.Phone != "N/A" {
		t.Errorf("row = %+v, want Amal / a@x.com / N/A", row)
	}
	if row.CVURL != "" {
		t.Errorf("expected no CV link, got %q", row.CVURL)
	}
	if res.Summary != "Showing 1–1 of 1" {
		t.Errorf("summary = %q", res.Summary)
	}
	if res.Message != "" {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestQueryVolunteerList_CVLink(t *testing.T) {
	snap := snapshotOf(t, []volunteer.Application{
		{Volunteer: volunteer.Volunteer{ID: "a2", Name: "Bo", Email: "b@x.com", Phone: "0211234567", Role: volunteer.RolePackaging, CVRef: "f9"}},
	}, nil)

	res := QueryVolunteerList(snap, VolunteerListQuery{}, fakeLinker{})
	if res.Rows[0].CVURL != "https://api.test/cv/a2" {
		t.Errorf("CVURL = %q", res.Rows[0].CVURL)
	}
	if res.Rows[0].Phone != "0211234567" {
		t.Errorf("Phone = %q", res.Rows[0].Phone)
	}
}

func TestQueryVolunteerList_EmptyAndFailed(t *testing.T) {
	empty := QueryVolunteerList(snapshotOf(t, nil, nil), VolunteerListQuery{EmptyText: "No volunteers found"}, fakeLinker{})
	if empty.Message != "No volunteers found" || empty.Failed {
		t.Errorf("empty result = %+v", empty)
	}

	failed := QueryVolunteerList(snapshotOf(t, nil, errors.New("boom")), VolunteerListQuery{
		EmptyText: "No volunteers found",
		LoadError: "Could not load volunteers.",
	}, fakeLinker{})
	if !failed.Failed || failed.Message != "Could not load volunteers." {
		t.Errorf("failed result = %+v", failed)
	}
	if len(failed.Rows) != 0 {
		t.Errorf("expected no rows after a failed load")
	}
}
