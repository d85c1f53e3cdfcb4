// Package client talks to the reservations API. Every response is decoded
// once, at this boundary, from the {success, data, message} envelope.
package client

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"reservas/dto"
	"reservas/errors"
	"reservas/models"
	"reservas/response"
	"reservas/services"

	"github.com/goccy/go-json"
)

const DefaultBaseURL = "http://localhost:8083/api/v1"

// ErrSuperseded is returned for a query whose answer arrived after a newer
// query of the same kind was issued. The caller should drop it.
var ErrSuperseded = stderrors.New("response superseded by a newer request")

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Message string
	Data    json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Conflict decodes the unavailable resources of a 409
func (e *APIError) Conflict() (*dto.ConflictResponse, bool) {
	if e.Status != http.StatusConflict || len(e.Data) == 0 {
		return nil, false
	}
	var c dto.ConflictResponse
	if err := json.Unmarshal(e.Data, &c); err != nil {
		return nil, false
	}
	return &c, true
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string

	mu          sync.Mutex
	generations map[string]uint64
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		HTTP:        &http.Client{Timeout: 30 * time.Second},
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		Token:       token,
		generations: make(map[string]uint64),
	}
}

// begin marks a new query of kind and returns its generation
func (c *Client) begin(kind string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[kind]++
	return c.generations[kind]
}

func (c *Client) latest(kind string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[kind] == gen
}

type request struct {
	kind        string // empty for writes, which are never superseded
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonBody(v interface{}) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// do sends req and decodes the envelope into a Result[T]. On an API error the
// decoded data is still returned next to the *APIError.
func do[T any](ctx context.Context, c *Client, req request) (T, *response.Pagination, error) {
	var zero T
	var gen uint64
	if req.kind != "" {
		gen = c.begin(req.kind)
	}

	u := c.BaseURL + "/" + strings.TrimPrefix(req.path, "/")
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, req.body)
	if err != nil {
		return zero, nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		ct := req.contentType
		if ct == "" {
			ct = "application/json"
		}
		httpReq.Header.Set("Content-Type", ct)
	}
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return zero, nil, &errors.NetworkError{Op: req.method + " " + req.path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, nil, &errors.NetworkError{Op: req.method + " " + req.path, Err: err}
	}
	if req.kind != "" && !c.latest(req.kind, gen) {
		return zero, nil, ErrSuperseded
	}

	var result response.Result[json.RawMessage]
	if err := json.Unmarshal(body, &result); err != nil {
		return zero, nil, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var data T
	if len(result.Data) > 0 && string(result.Data) != "null" {
		if err := json.Unmarshal(result.Data, &data); err != nil && resp.StatusCode < 300 {
			return zero, nil, fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return data, nil, &APIError{Status: resp.StatusCode, Message: result.Message, Data: result.Data}
	}
	return data, result.Pagination, nil
}

// Availability asks whether resource is free in [from, to). Kinds are guarded
// per client: an older availability answer is dropped with ErrSuperseded.
func (c *Client) Availability(ctx context.Context, resourceType, resource string, from, to time.Time, exclude uint) (*dto.AvailabilityResponse, error) {
	q := url.Values{}
	q.Set("type", resourceType)
	q.Set("resource", resource)
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	if exclude != 0 {
		q.Set("exclude", strconv.FormatUint(uint64(exclude), 10))
	}
	out, _, err := do[dto.AvailabilityResponse](ctx, c, request{kind: "availability", method: http.MethodGet, path: "/disponibilidad", query: q})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Calendar returns the per-day status of resource in month
func (c *Client) Calendar(ctx context.Context, resourceType, resource string, month time.Time) ([]services.DayStatus, error) {
	q := url.Values{}
	q.Set("type", resourceType)
	q.Set("resource", resource)
	q.Set("month", month.Format("2006-01"))
	out, _, err := do[[]services.DayStatus](ctx, c, request{kind: "calendar", method: http.MethodGet, path: "/disponibilidad/calendario", query: q})
	return out, err
}

// Estimate prices a selection
func (c *Client) Estimate(ctx context.Context, req dto.EstimateRequest) (*services.PriceBreakdown, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	out, _, err := do[services.PriceBreakdown](ctx, c, request{kind: "estimate", method: http.MethodPost, path: "/precios/estimar", body: body})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReservation creates a reservation of pathType (habitaciones, eventos, masajes).
// A booking conflict comes back as an *APIError whose Conflict() is set.
func (c *Client) CreateReservation(ctx context.Context, pathType string, req dto.CreateReservationRequest) (*models.Reservation, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	out, _, err := do[models.Reservation](ctx, c, request{method: http.MethodPost, path: "/reservas/" + url.PathEscape(pathType), body: body})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportFile uploads an xlsx workbook. With validateOnly nothing is written.
// A rejected batch returns its full report together with an *APIError.
func (c *Client) ImportFile(ctx context.Context, fileName string, r io.Reader, validateOnly bool) (*services.ValidationResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	path := "/importar/excel"
	if validateOnly {
		path = "/importar/validar"
	}
	out, _, err := do[services.ValidationResult](ctx, c, request{
		method: http.MethodPost, path: path, body: &buf, contentType: w.FormDataContentType(),
	})
	return &out, err
}
