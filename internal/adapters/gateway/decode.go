package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"volunteerdesk/internal/domain/availability"
	"volunteerdesk/internal/domain/volunteer"
)

// wireRecord is the canonical volunteer record on the wire.
// Optional fields are pointers so that null and absent both decode to "".
type wireRecord struct {
	ID             string          `json:"_id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          *string         `json:"phone_number"`
	Description    *string         `json:"desc_paragraph"`
	Role           string          `json:"volunteering_role"`
	Availabilities json.RawMessage `json:"availabilities"`
	CV             *string         `json:"cv"`
	Status         string          `json:"status,omitempty"`
}

type applicationsEnvelope struct {
	Applications *[]wireRecord `json:"applications"`
}

type volunteersEnvelope struct {
	Success    *bool         `json:"success"`
	Volunteers *[]wireRecord `json:"volunteers"`
}

type actionEnvelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type messageEnvelope struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
}

// decodeObject unmarshals body into v, rejecting anything that is not a JSON object.
func decodeObject(path string, body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return malformed(path, "expected a JSON object")
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return malformed(path, "%v", err)
	}
	return nil
}

// toVolunteer validates a wire record and converts it to the domain model.
// POST: Returns ErrMalformedResponse if _id is missing, the role is unknown, or a date is unparsable
func (r wireRecord) toVolunteer(path string) (volunteer.Volunteer, error) {
	if r.ID == "" {
		return volunteer.Volunteer{}, malformed(path, "record without _id")
	}
	role, err := volunteer.ParseRole(r.Role)
	if err != nil || role == "" {
		return volunteer.Volunteer{}, malformed(path, "record %s: unknown volunteering_role %q", r.ID, r.Role)
	}
	dates, err := decodeAvailabilities(r.Availabilities)
	if err != nil {
		return volunteer.Volunteer{}, malformed(path, "record %s: %v", r.ID, err)
	}
	return volunteer.Volunteer{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Phone:          deref(r.Phone),
		Role:           role,
		Description:    deref(r.Description),
		Availabilities: dates,
		CVRef:          deref(r.CV),
	}, nil
}

// decodeAvailabilities accepts an array of YYYY-MM-DD strings, or a JSON string
// holding such an array (how the form field is stored verbatim by the service).
func decodeAvailabilities(raw json.RawMessage) (availability.Set, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return availability.Set{}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return availability.Set{}, fmt.Errorf("availabilities: %w", err)
		}
		if len(bytes.TrimSpace([]byte(inner))) == 0 {
			return availability.Set{}, nil
		}
		raw = json.RawMessage(inner)
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return availability.Set{}, fmt.Errorf("availabilities: %w", err)
	}
	set, err := availability.ParseSet(values)
	if err != nil {
		return availability.Set{}, fmt.Errorf("availabilities: %w", err)
	}
	return set, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
