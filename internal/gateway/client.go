package gateway

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
	"strconv"
	"strings"
	"sync"
	"time"

	"chemviz-client/internal/apperr"
	"chemviz-client/internal/dto"
	"chemviz-client/internal/mapper"
	"chemviz-client/internal/model"
	"chemviz-client/internal/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	logModule       = "GATEWAY"
	tracerName      = "chemviz-client/gateway"
	RequestIdHeader = "X-Request-Id"
	authScheme      = "Token"
	defaultTimeout  = 60 * time.Second
)

// TokenSource supplies the current session token. An empty string means no
// Authorization header is sent.
type TokenSource interface {
	Token() string
}

type TokenSourceFunc func() string

func (f TokenSourceFunc) Token() string { return f() }

type ExportKind string

const (
	ExportPDF   ExportKind = "pdf"
	ExportExcel ExportKind = "excel"
)

func ParseExportKind(s string) (ExportKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return ExportPDF, true
	case "excel", "xlsx":
		return ExportExcel, true
	}
	return "", false
}

// UploadFile is a CSV chosen by the user.
type UploadFile struct {
	Name string
	Data []byte
}

type UploadResult struct {
	UploadId int64
	Summary  model.Summary
}

type IGateway interface {
	Login(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error)
	Upload(ctx context.Context, file UploadFile) (*UploadResult, error)
	ListEquipment(ctx context.Context, uploadId *int64) ([]model.EquipmentRecord, error)
	ListHistory(ctx context.Context) ([]model.UploadRecord, error)
	FetchSummary(ctx context.Context, uploadId int64) (*model.Summary, error)
	RequestExport(ctx context.Context, kind ExportKind, uploadId int64) ([]byte, error)
}

// Client talks to the visualizer REST API. It holds no state besides the
// token source; every call is independent.
type Client struct {
	baseURL string
	http    *http.Client
	mapper  *mapper.DatasetMapper
	tracer  trace.Tracer
	logger  logger.ILogger

	mu     sync.RWMutex
	tokens TokenSource
}

var _ IGateway = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTransport keeps the configured timeout but swaps the round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(baseURL string, log logger.ILogger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		mapper:  mapper.NewDatasetMapper(),
		tracer:  otel.Tracer(tracerName),
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource wires the session store in after construction, since the
// store itself authenticates through this client.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Login(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error) {
	return c.authenticate(ctx, "login", "/auth/login/", req)
}

func (c *Client) Register(ctx context.Context, req dto.CredentialsRequest) (*dto.AuthResponse, error) {
	return c.authenticate(ctx, "register", "/auth/register/", req)
}

func (c *Client) authenticate(ctx context.Context, op, path string, req dto.CredentialsRequest) (*dto.AuthResponse, error) {
	body, err := c.doJSON(ctx, op, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, err
	}
	resp, err := decode[dto.AuthResponse](op, body)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Upload(ctx context.Context, file UploadFile) (*UploadResult, error) {
	const op = "upload"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("%s: build form: %w", op, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("%s: build form: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: build form: %w", op, err)
	}

	body, err := c.do(ctx, op, http.MethodPost, "/upload/", nil, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	resp, err := decode[dto.UploadResponse](op, body)
	if err != nil {
		return nil, err
	}
	if resp.UploadId == nil {
		return nil, &apperr.DecodeError{Op: op, Err: errors.New("response has no upload_id")}
	}

	return &UploadResult{
		UploadId: *resp.UploadId,
		Summary:  *c.mapper.ToSummary(&resp.Summary),
	}, nil
}

// ListEquipment returns the records of one upload. A nil id asks the server
// for the caller's latest upload.
func (c *Client) ListEquipment(ctx context.Context, uploadId *int64) ([]model.EquipmentRecord, error) {
	const op = "equipment"

	var query url.Values
	if uploadId != nil {
		query = url.Values{"upload_id": {strconv.FormatInt(*uploadId, 10)}}
	}

	body, err := c.do(ctx, op, http.MethodGet, "/equipment/", query, nil, "")
	if err != nil {
		return nil, err
	}
	items, err := decode[[]dto.EquipmentResponse](op, body)
	if err != nil {
		return nil, err
	}
	return c.mapper.ToEquipmentRecords(items), nil
}

func (c *Client) ListHistory(ctx context.Context) ([]model.UploadRecord, error) {
	const op = "history"

	body, err := c.do(ctx, op, http.MethodGet, "/history/", nil, nil, "")
	if err != nil {
		return nil, err
	}
	items, err := decode[[]dto.HistoryItemResponse](op, body)
	if err != nil {
		return nil, err
	}
	return c.mapper.ToUploadRecords(items), nil
}

func (c *Client) FetchSummary(ctx context.Context, uploadId int64) (*model.Summary, error) {
	const op = "summary"

	query := url.Values{"upload_id": {strconv.FormatInt(uploadId, 10)}}
	body, err := c.do(ctx, op, http.MethodGet, "/summary/", query, nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := decode[dto.SummaryResponse](op, body)
	if err != nil {
		return nil, err
	}
	return c.mapper.ToSummary(&resp), nil
}

// RequestExport returns the raw document bytes rendered by the server.
func (c *Client) RequestExport(ctx context.Context, kind ExportKind, uploadId int64) ([]byte, error) {
	var path string
	switch kind {
	case ExportPDF:
		path = "/generate-report/"
	case ExportExcel:
		path = "/export-excel/"
	default:
		return nil, fmt.Errorf("export: unknown kind %q", kind)
	}

	return c.doJSON(ctx, "export_"+string(kind), http.MethodPost, path, nil, dto.ExportRequest{UploadId: uploadId})
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}
	return c.do(ctx, op, method, path, query, bytes.NewReader(data), "application/json")
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "gateway."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	requestId := uuid.New().String()
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", target),
		attribute.String("request.id", requestId),
	)

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, c.fail(span, op, requestId, &apperr.NetworkError{Op: op, Err: err})
	}
	req.Header.Set(RequestIdHeader, requestId)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", authScheme+" "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(span, op, requestId, &apperr.NetworkError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(span, op, requestId, &apperr.NetworkError{Op: op, Err: err})
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(span, op, requestId, &apperr.ServerError{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(data),
		})
	}

	c.logger.Debug(logModule, "Request completed", map[string]interface{}{
		"op":          op,
		"status":      resp.StatusCode,
		"request_id":  requestId,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return data, nil
}

func (c *Client) fail(span trace.Span, op, requestId string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Warn(logModule, "Request failed", map[string]interface{}{
		"op":         op,
		"request_id": requestId,
		"error":      err.Error(),
	})
	return err
}

func decode[T any](op string, data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &apperr.DecodeError{Op: op, Err: err}
	}
	return out, nil
}

// errorMessage pulls the human readable message out of an error body. The API
// uses "error"; authentication failures from the framework use "detail".
func errorMessage(data []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Detail
}
