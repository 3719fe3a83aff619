// Package gateway is the typed boundary to the external volunteer service.
// Every response is checked against the canonical record schema before it
// reaches the rest of the application.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"volunteerdesk/internal/adapters/http/perf"
	"volunteerdesk/internal/domain/signup"
	"volunteerdesk/internal/domain/volunteer"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// EmailRequest is the payload of a bulk email.
type EmailRequest struct {
	VolunteerIDs []string `json:"volunteerIds"`
	Subject      string   `json:"subject"`
	Message      string   `json:"message"`
}

// Client calls the volunteer service over HTTP.
type Client struct {
	baseURL    string
	publicURL  string
	httpClient *http.Client
	recorder   perf.Recorder
}

// NewClient creates a client for the service at baseURL.
// publicURL is the address browsers use for CV links; empty means baseURL.
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a client whose requests time out after timeout (no timeout when 0)
func NewClient(baseURL, publicURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	publicURL = strings.TrimRight(publicURL, "/")
	if publicURL == "" {
		publicURL = baseURL
	}
	return &Client{
		baseURL:    baseURL,
		publicURL:  publicURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithRecorder makes the client record the duration of every call.
func (c *Client) WithRecorder(r perf.Recorder) *Client {
	c.recorder = r
	return c
}

// Signup submits a new volunteer application as multipart form data.
// PRE: form has passed Validate
// POST: Returns the service's confirmation message
func (c *Client) Signup(ctx context.Context, form signup.Form) (string, error) {
	const path = "/signup"

	dates, err := json.Marshal(form.Availabilities.Strings())
	if err != nil {
		return "", fmt.Errorf("encode availabilities: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"name", form.Name},
		{"desc_paragraph", form.Description},
		{"email", form.Email},
		{"phone_number", form.Phone},
		{"volunteering_role", string(form.Role)},
		{"availabilities", string(dates)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if form.CV != nil {
		if err := writeFilePart(mw, "cv", form.CV); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	var resp messageEnvelope
	if err := decodeObject(path, body, &resp); err != nil {
		return "", err
	}
	if resp.Success != nil && !*resp.Success {
		return "", fmt.Errorf("%w: %s", ErrActionRejected, resp.Message)
	}
	slog.Info("signup_submitted", "email", form.Email, "role", form.Role)
	return resp.Message, nil
}

func writeFilePart(mw *multipart.Writer, field string, a *signup.Attachment) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, a.Filename))
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(a.Data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

// ListApplications fetches the pending applications.
// POST: Every returned application has an ID and a known role, or the call fails with ErrMalformedResponse
func (c *Client) ListApplications(ctx context.Context) ([]volunteer.Application, error) {
	const path = "/applications"
	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	var env applicationsEnvelope
	if err := decodeObject(path, body, &env); err != nil {
		return nil, err
	}
	if env.Applications == nil {
		return nil, malformed(path, "missing applications")
	}
	out := make([]volunteer.Application, 0, len(*env.Applications))
	for _, rec := range *env.Applications {
		v, err := rec.toVolunteer(path)
		if err != nil {
			return nil, err
		}
		status := rec.Status
		if status == "" {
			status = volunteer.StatusPending
		}
		out = append(out, volunteer.Application{Volunteer: v, Status: status})
	}
	return out, nil
}

// ListVolunteers fetches the approved volunteers.
// POST: Returns ErrMalformedResponse when success is false or volunteers is missing
func (c *Client) ListVolunteers(ctx context.Context) ([]volunteer.Volunteer, error) {
	const path = "/volunteers"
	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	var env volunteersEnvelope
	if err := decodeObject(path, body, &env); err != nil {
		return nil, err
	}
	if env.Success != nil && !*env.Success {
		return nil, malformed(path, "success is false")
	}
	if env.Volunteers == nil {
		return nil, malformed(path, "missing volunteers")
	}
	out := make([]volunteer.Volunteer, 0, len(*env.Volunteers))
	for _, rec := range *env.Volunteers {
		v, err := rec.toVolunteer(path)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Approve moves one pending application to approved.
func (c *Client) Approve(ctx context.Context, id string) error {
	return c.decide(ctx, id, "approve")
}

// Reject moves one pending application to rejected.
func (c *Client) Reject(ctx context.Context, id string) error {
	return c.decide(ctx, id, "reject")
}

// decide issues an approve or reject call.
// POST: Returns ErrActionRejected when the service answers success:false
func (c *Client) decide(ctx context.Context, id, verb string) error {
	if id == "" {
		return fmt.Errorf("%s: empty application id", verb)
	}
	path := "/application/" + url.PathEscape(id) + "/" + verb
	body, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	var resp actionEnvelope
	if err := decodeObject(path, body, &resp); err != nil {
		return err
	}
	if resp.Success == nil {
		return malformed(path, "missing success")
	}
	if !*resp.Success {
		slog.Warn("gateway_action_rejected", "action", verb, "id", id, "message", resp.Message)
		return fmt.Errorf("%w: %s %s", ErrActionRejected, verb, id)
	}
	return nil
}

// SendEmail sends one batched email to the given volunteers.
// PRE: req.VolunteerIDs is non-empty
// POST: Returns the service's summary message verbatim
func (c *Client) SendEmail(ctx context.Context, req EmailRequest) (string, error) {
	const path = "/send-email"
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode email request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	var resp messageEnvelope
	if err := decodeObject(path, body, &resp); err != nil {
		return "", err
	}
	if resp.Success != nil && !*resp.Success {
		return "", fmt.Errorf("%w: %s", ErrActionRejected, resp.Message)
	}
	return resp.Message, nil
}

// CVURL returns the browser-facing link to a volunteer's CV.
func (c *Client) CVURL(id string) string {
	return c.publicURL + "/cv/" + url.PathEscape(id)
}

// do performs one request and returns the body of a 2xx response.
// POST: transport errors and non-2xx statuses wrap ErrNetworkFailure
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	status := 0
	defer func() {
		if c.recorder != nil {
			c.recorder.Record(perf.Entry{
				Kind:       perf.KindUpstream,
				Path:       method + " " + routeLabel(path),
				StatusCode: status,
				DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
				Timestamp:  start,
			})
		}
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("gateway_request_failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetworkFailure, method, path, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		slog.Error("gateway_request_failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: read %s %s: %v", ErrNetworkFailure, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var env actionEnvelope
		if json.Unmarshal(data, &env) == nil {
			serr.Message = env.Message
		}
		slog.Error("gateway_request_failed", "method", method, "path", path, "status", resp.StatusCode)
		return nil, serr
	}

	slog.Debug("gateway_request", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return data, nil
}

// routeLabel replaces the id segment of per-record paths so timings group by endpoint.
func routeLabel(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 3 && (parts[1] == "application" || parts[1] == "cv") {
		parts[2] = "{id}"
	}
	return strings.Join(parts, "/")
}
