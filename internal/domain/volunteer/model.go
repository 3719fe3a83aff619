package volunteer

import (
	"errors"
	"fmt"
	"strings"

	"volunteerdesk/internal/domain/availability"
)

// Role is a volunteering role. The zero value means "no role".
type Role string

// Business rule constants
const (
	RoleCooking      Role = "Cooking"
	RolePackaging    Role = "Packaging"
	RoleCleaning     Role = "Cleaning"
	RoleDistributing Role = "Distributing"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Roles lists every role in display order.
var Roles = []Role{RoleCooking, RolePackaging, RoleCleaning, RoleDistributing}

// Domain errors
var (
	ErrUnknownRole = errors.New("unknown volunteering role")
)

// ParseRole maps a role name to its canonical value, ignoring case and surrounding space.
// PRE: none
// POST: Returns ("", nil) for an empty name, ErrUnknownRole for anything outside Roles
func ParseRole(name string) (Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	for _, r := range Roles {
		if strings.EqualFold(string(r), name) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// IsValid reports whether r is one of Roles.
func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Volunteer holds state for the concept.
type Volunteer struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Role           Role
	Description    string
	Availabilities availability.Set
	CVRef          string // opaque handle; empty means no CV on file
}

// HasCV reports whether a CV is on file.
// INVARIANT: Volunteer fields are not mutated
func (v Volunteer) HasCV() bool {
	return v.CVRef != ""
}

// Profile returns the volunteer record itself; Application inherits it.
func (v Volunteer) Profile() Volunteer { return v }

// RecordID returns the stable identity used by selections.
func (v Volunteer) RecordID() string { return v.ID }

// RecordName returns the name matched by searches.
func (v Volunteer) RecordName() string { return v.Name }

// RecordEmail returns the email matched by searches.
func (v Volunteer) RecordEmail() string { return v.Email }

// RecordRole returns the role matched by the role filter.
func (v Volunteer) RecordRole() Role { return v.Role }

// Application is a volunteer record awaiting a decision.
type Application struct {
	Volunteer
	Status string
}

// IsPending reports whether the application still awaits approval or rejection.
// INVARIANT: Status field is not mutated
func (a Application) IsPending() bool {
	return a.Status == "" || a.Status == StatusPending
}
