package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"volunteerdesk/internal/adapters/gateway"
	"volunteerdesk/internal/application/liststate"
	"volunteerdesk/internal/application/listutil"
	"volunteerdesk/internal/application/orchestrators"
	"volunteerdesk/internal/domain/volunteer"
)

// List form errors
var (
	errUnknownAction = errors.New("unknown list action")
	errMissingID     = errors.New("toggle without id")
)

// ensureLoaded fetches the collection on first visit or when reload is requested.
// Failures are kept in the controller and render as an empty list with a message.
func ensureLoaded[T liststate.Record](ctx context.Context, c *liststate.Controller[T], reload bool) {
	if reload || !c.Loaded() {
		_ = c.Load(ctx)
	}
}

// applyViewChange applies one list interaction. It never calls the remote service.
// PRE: p comes from a submitted list form
// POST: Returns errUnknownAction, errMissingID or volunteer.ErrUnknownRole without changing state
func applyViewChange[T liststate.Record](c *liststate.Controller[T], p listutil.ViewParams) error {
	switch p.Action {
	case "filter":
		role, err := volunteer.ParseRole(p.Role)
		if err != nil {
			return err
		}
		c.SetSearchTerm(p.Search)
		c.SetRoleFilter(role)
	case "search":
		c.SetSearchTerm(p.Search)
	case "role":
		role, err := volunteer.ParseRole(p.Role)
		if err != nil {
			return err
		}
		c.SetRoleFilter(role)
	case "page":
		c.SetPage(p.Page)
	case "toggle":
		if p.ID == "" {
			return errMissingID
		}
		c.Toggle(p.ID)
	case "select_all":
		c.SelectAll()
	case "clear":
		c.Clear()
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, p.Action)
	}
	return nil
}

// handleListView handles the view form of either admin list.
func handleListView[T liststate.Record](w http.ResponseWriter, r *http.Request, c *liststate.Controller[T], back string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if err := applyViewChange(c, listutil.ParseViewParams(r.PostForm)); err != nil {
		http.Error(w, "Invalid list action", http.StatusBadRequest)
		return
	}
	redirectOrNoContent(w, r, back)
}

// bulkResponse is the JSON answer to an approve or reject.
type bulkResponse struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
	Message   string            `json:"message"`
}

func newBulkResponse(outcome orchestrators.BulkOutcome, verb string) bulkResponse {
	resp := bulkResponse{
		Succeeded: outcome.Succeeded,
		Failed:    make(map[string]string, len(outcome.Failed)),
		Message:   outcomeMessage(outcome, verb),
	}
	if resp.Succeeded == nil {
		resp.Succeeded = []string{}
	}
	for id, err := range outcome.Failed {
		resp.Failed[id] = failureReason(err)
	}
	return resp
}

// failureReason is the client-facing text for a failed decision; the detail is logged by the orchestrator.
func failureReason(err error) string {
	if errors.Is(err, gateway.ErrActionRejected) {
		return "The volunteer service declined the request."
	}
	return "The volunteer service could not be reached."
}

func outcomeMessage(outcome orchestrators.BulkOutcome, verb string) string {
	text := outcome.Summary(verb)
	if outcome.RefreshErr != nil {
		text += " The list could not be reloaded."
	}
	return text
}

func outcomeKind(outcome orchestrators.BulkOutcome) string {
	if len(outcome.Failed) > 0 || outcome.RefreshErr != nil {
		return "error"
	}
	return "success"
}
