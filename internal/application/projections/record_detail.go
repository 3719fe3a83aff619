package projections

import (
	"strings"

	"volunteerdesk/internal/domain/volunteer"
)

// DetailField is one labelled row of the detail inspector.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Link  string `json:"link,omitempty"`
}

// RecordDetail is the read model for the detail inspector.
type RecordDetail struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Fields []DetailField `json:"fields"`
}

// BuildRecordDetail lists every field of v in a fixed order.
// PRE: none
// POST: Returns Name, Email, Phone, Role, Description, Availabilities and CV rows;
// missing values show Placeholder
func BuildRecordDetail(v volunteer.Volunteer, linker CVLinker) RecordDetail {
	dates := make([]string, 0, v.Availabilities.Len())
	for _, d := range v.Availabilities.Sorted() {
		dates = append(dates, d.Display())
	}

	cv := DetailField{Label: "CV", Value: Placeholder}
	if v.HasCV() && linker != nil {
		cv.Value = "View CV"
		cv.Link = linker.CVURL(v.ID)
	}

	return RecordDetail{
		ID:    v.ID,
		Title: orPlaceholder(v.Name),
		Fields: []DetailField{
			{Label: "Name", Value: orPlaceholder(v.Name)},
			{Label: "Email", Value: orPlaceholder(v.Email)},
			{Label: "Phone", Value: orPlaceholder(v.Phone)},
			{Label: "Role", Value: orPlaceholder(string(v.Role))},
			{Label: "Description", Value: orPlaceholder(v.Description)},
			{Label: "Availabilities", Value: orPlaceholder(strings.Join(dates, ", "))},
			cv,
		},
	}
}
