package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/curascan/cli/internal/domain"
	"github.com/curascan/cli/internal/ports"
)

const defaultTimeout = 30 * time.Second

// errInvalidCredentials deliberately does not say whether the identifier
// exists.
var errInvalidCredentials = errors.New("incorrect username/email or password")

// TokenSource supplies the current bearer token, or "" when anonymous.
type TokenSource func() string

// Client talks to the screening backend. Every authenticated request
// carries the ambient bearer token; a 401 on any resource call fires the
// onUnauthorized hook exactly once per response, which the session
// manager debounces into a single global logout.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

var (
	_ ports.AuthAPI          = (*Client)(nil)
	_ ports.PatientDirectory = (*Client)(nil)
	_ ports.ScreeningAPI     = (*Client)(nil)
)

func New(baseURL string, tokens TokenSource, onUnauthorized func()) *Client {
	if tokens == nil {
		tokens = func() string { return "" }
	}
	if onUnauthorized == nil {
		onUnauthorized = func() {}
	}

	return &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		tokens:         tokens,
		onUnauthorized: onUnauthorized,
	}
}

// Login exchanges credentials for a session. A 401 maps to a generic
// invalid-credentials message; the hook is not fired because there is no
// session to invalidate.
func (c *Client) Login(ctx context.Context, identifier, secret string) (domain.Session, error) {
	body, err := json.Marshal(loginRequestPayload{Username: identifier, Password: secret})
	if err != nil {
		return domain.Session{}, fmt.Errorf("marshal login request: %w", err)
	}

	var payload loginResponsePayload
	err = c.do(ctx, http.MethodPost, "/auth/login", requestOptions{
		body:        bytes.NewReader(body),
		contentType: "application/json",
	}, &payload)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return domain.Session{}, errInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}

	session := domain.Session{
		Actor:       fromUserPayload(payload.User),
		AccessToken: payload.AccessToken,
	}
	if !session.Present() {
		return domain.Session{}, errors.New("login response missing token or profile")
	}
	return session, nil
}

// Me resolves the actor a token belongs to. The token is explicit: the
// caller is verifying it, so the ambient source must not be consulted
// and a 401 must not fire the systemic hook.
func (c *Client) Me(ctx context.Context, token string) (domain.Actor, error) {
	var payload userPayload
	err := c.do(ctx, http.MethodGet, "/auth/me", requestOptions{token: token}, &payload)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("fetch profile: %w", err)
	}
	return fromUserPayload(payload), nil
}

// Logout notifies the server. Callers treat this as best-effort.
func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", requestOptions{token: token}, nil); err != nil {
		return fmt.Errorf("notify logout: %w", err)
	}
	return nil
}

func (c *Client) SearchPatients(ctx context.Context, query string) ([]domain.Patient, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}

	var payload []patientPayload
	err := c.do(ctx, http.MethodGet, "/patients/search?"+params.Encode(), requestOptions{ambient: true}, &payload)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}

	patients := make([]domain.Patient, 0, len(payload))
	for _, p := range payload {
		patients = append(patients, fromPatientPayload(p))
	}
	return patients, nil
}

// Analyze uploads the staged image for scoring and returns the verdict
// plus the server-assigned scan ID.
func (c *Client) Analyze(ctx context.Context, req ports.AnalyzeRequest) (domain.InferenceResult, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", req.ImageName)
	if err != nil {
		return domain.InferenceResult{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(req.ImageData); err != nil {
		return domain.InferenceResult{}, fmt.Errorf("write image part: %w", err)
	}
	if err := form.WriteField("consent_accepted", fmt.Sprintf("%t", req.ConsentAccepted)); err != nil {
		return domain.InferenceResult{}, fmt.Errorf("write consent field: %w", err)
	}
	if req.Notes != "" {
		if err := form.WriteField("doctor_notes", req.Notes); err != nil {
			return domain.InferenceResult{}, fmt.Errorf("write notes field: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return domain.InferenceResult{}, fmt.Errorf("finish upload form: %w", err)
	}

	params := url.Values{}
	params.Set("patient_id", string(req.PatientID))

	var payload analyzeResponsePayload
	err = c.do(ctx, http.MethodPost, "/scans/analyze?"+params.Encode(), requestOptions{
		body:        &buf,
		contentType: form.FormDataContentType(),
		ambient:     true,
	}, &payload)
	if err != nil {
		return domain.InferenceResult{}, fmt.Errorf("analyze scan: %w", err)
	}

	return fromAnalyzePayload(payload), nil
}

type requestOptions struct {
	body        io.Reader
	contentType string
	// token is an explicit bearer token for session-edge calls; ambient
	// pulls the current one from the token source instead.
	token   string
	ambient bool
}

func (c *Client) do(ctx context.Context, method, path string, opts requestOptions, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, opts.body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if opts.contentType != "" {
		req.Header.Set("Content-Type", opts.contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	token := opts.token
	if opts.ambient {
		token = c.tokens()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		if opts.ambient && resp.StatusCode == http.StatusUnauthorized {
			c.onUnauthorized()
		}
		return readStatusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func readStatusError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &StatusError{StatusCode: resp.StatusCode, Detail: fmt.Sprintf("failed to read body: %v", readErr)}
	}

	var apiErr struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		if apiErr.Detail != "" {
			return &StatusError{StatusCode: resp.StatusCode, Detail: apiErr.Detail}
		}
		if apiErr.Error != "" {
			return &StatusError{StatusCode: resp.StatusCode, Detail: apiErr.Error}
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Detail: string(respBody)}
}
