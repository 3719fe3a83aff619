package signup

import (
	"errors"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"volunteerdesk/internal/domain/availability"
	"volunteerdesk/internal/domain/volunteer"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
)

// AcceptedCVExtensions lists the CV file types the form accepts.
var AcceptedCVExtensions = []string{".pdf", ".doc", ".docx"}

// Domain errors
var (
	ErrValidationFailure = errors.New("signup form is invalid")
)

// fieldMessages maps a form field to the message shown when it fails validation.
var fieldMessages = map[string]string{
	"name":        "Name is required.",
	"email":       "Enter a valid email address.",
	"phone":       "Phone number must be at least 10 digits.",
	"cv":          "Upload your CV as a PDF or Word document.",
	"role":        "Select a volunteering role.",
	"description": "Tell us a little about yourself.",
}

var phonePattern = regexp.MustCompile(`^[0-9]{10,}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	_ = v.RegisterValidation("phonedigits", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("volunteerrole", func(fl validator.FieldLevel) bool {
		return volunteer.Role(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("cvext", func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(filepath.Ext(fl.Field().String()))
		for _, ok := range AcceptedCVExtensions {
			if ext == ok {
				return true
			}
		}
		return false
	})
	return v
}

// Attachment is an uploaded file held in memory until submission.
type Attachment struct {
	Filename    string `form:"cv" validate:"required,cvext"`
	ContentType string `form:"-"`
	Data        []byte `form:"cv" validate:"min=1"`
}

// Form holds the state of a signup submission in progress.
type Form struct {
	Name           string           `form:"name" validate:"required,max=100"`
	Email          string           `form:"email" validate:"required,email"`
	Phone          string           `form:"phone" validate:"phonedigits"`
	Role           volunteer.Role   `form:"role" validate:"volunteerrole"`
	Description    string           `form:"description" validate:"required,max=2000"`
	CV             *Attachment      `form:"cv" validate:"required"`
	Availabilities availability.Set `form:"-" validate:"-"`
}

// ValidationError lists the fields that failed validation with a user-facing message each.
type ValidationError struct {
	Fields map[string]string
}

// Error implements error.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid signup fields: " + strings.Join(names, ", ")
}

// Unwrap lets callers match ErrValidationFailure.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailure
}

// Normalize trims surrounding whitespace from the text fields.
// POST: Name, Email, Phone and Description carry no leading/trailing space
func (f *Form) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Description = strings.TrimSpace(f.Description)
}

// Validate checks the required fields before anything is sent.
// PRE: Form struct is initialized
// POST: Returns *ValidationError (wrapping ErrValidationFailure) or nil; the form is not modified
func (f *Form) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{Fields: make(map[string]string)}
	for _, fe := range fieldErrs {
		name := fe.Field()
		if msg, ok := fieldMessages[name]; ok {
			verr.Fields[name] = msg
		}
	}
	return verr
}

// ToggleDate adds the date when absent and removes it when present.
func (f *Form) ToggleDate(d availability.Date) {
	f.Availabilities.Toggle(d)
}

// Reset clears every field after a successful submission.
// POST: Form equals the zero value
func (f *Form) Reset() {
	*f = Form{}
}
