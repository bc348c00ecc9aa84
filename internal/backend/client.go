// Package backend is the HTTP client for the document question-answering
// service. Authenticated calls take the bearer token explicitly; the client
// itself holds no session state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"violet-client/internal/model"
	"violet-client/internal/pkg/logger"
)

const logModule = "Backend"

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logger.ILogger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     logger.ILogger
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		tracer:     otel.Tracer("violet-client/backend"),
		logger:     log,
	}
}

// Login uses the form-encoded password flow.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var token Token
	err := c.do(ctx, call{
		op:          "Login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &token)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, &TransportError{Op: "Login", Err: fmt.Errorf("response carried no access token")}
	}
	return &token, nil
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return fmt.Errorf("marshal register request failed: %w", err)
	}
	return c.do(ctx, call{
		op:          "Register",
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	}, nil)
}

func (c *Client) ListCollections(ctx context.Context, token string) ([]model.Collection, error) {
	collections := []model.Collection{}
	err := c.do(ctx, call{op: "ListCollections", method: http.MethodGet, path: "/app/collections", token: token}, &collections)
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (c *Client) DeleteCollection(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{
		op:     "DeleteCollection",
		method: http.MethodDelete,
		path:   "/app/collections/" + strconv.FormatInt(id, 10),
		token:  token,
	}, nil)
}

func (c *Client) DeleteAllCollections(ctx context.Context, token string) (*BulkDeleteResult, error) {
	var result BulkDeleteResult
	err := c.do(ctx, call{op: "DeleteAllCollections", method: http.MethodDelete, path: "/app/collections", token: token}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Insights(ctx context.Context, token string, id int64) (*model.Insights, error) {
	var resp struct {
		CollectionID int64           `json:"collection_id"`
		Insights     *model.Insights `json:"insights"`
	}
	err := c.do(ctx, call{
		op:     "Insights",
		method: http.MethodGet,
		path:   "/app/insights/" + strconv.FormatInt(id, 10),
		token:  token,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Insights, nil
}

func (c *Client) Tables(ctx context.Context, token string, id int64) ([]model.TableInfo, error) {
	var resp struct {
		CollectionID int64             `json:"collection_id"`
		Tables       []model.TableInfo `json:"tables"`
	}
	err := c.do(ctx, call{
		op:     "Tables",
		method: http.MethodGet,
		path:   "/app/collections/" + strconv.FormatInt(id, 10) + "/tables",
		token:  token,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Tables, nil
}

func (c *Client) LLMProviders(ctx context.Context) ([]model.LLMProvider, error) {
	var resp struct {
		Providers []model.LLMProvider `json:"providers"`
	}
	if err := c.do(ctx, call{op: "LLMProviders", method: http.MethodGet, path: "/app/llm-providers"}, &resp); err != nil {
		return nil, err
	}
	return resp.Providers, nil
}

// Upload sends every file under the repeated "files" field together with the
// collection name and the processing parameters.
func (c *Client) Upload(ctx context.Context, token string, req UploadRequest) (*UploadResult, error) {
	body, contentType, err := encodeUpload(req)
	if err != nil {
		return nil, err
	}
	var result UploadResult
	err = c.do(ctx, call{
		op:          "Upload",
		method:      http.MethodPost,
		path:        "/app/upload",
		body:        body,
		contentType: contentType,
		token:       token,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Chat(ctx context.Context, token string, req ChatRequest) (*ChatAnswer, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request failed: %w", err)
	}
	var answer ChatAnswer
	err = c.do(ctx, call{
		op:          "Chat",
		method:      http.MethodPost,
		path:        "/app/chat",
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		token:       token,
	}, &answer)
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func encodeUpload(req UploadRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range req.Files {
		part, err := writer.CreateFormFile("files", f.Name())
		if err != nil {
			return nil, "", fmt.Errorf("create form file failed: %w", err)
		}
		src, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open %s failed: %w", f.Name(), err)
		}
		_, copyErr := io.Copy(part, src)
		src.Close()
		if copyErr != nil {
			return nil, "", fmt.Errorf("read %s failed: %w", f.Name(), copyErr)
		}
	}

	fields := [][2]string{
		{"collection_name", req.CollectionName},
		{"llm_provider", req.LLMProvider},
		{"llm_model", req.LLMModel},
	}
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write form field %s failed: %w", kv[0], err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body failed: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

type call struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	token       string
}

func (c *Client) do(ctx context.Context, cl call, out interface{}) (err error) {
	ctx, span := c.tracer.Start(ctx, "backend."+cl.op, trace.WithAttributes(
		attribute.String("http.method", cl.method),
		attribute.String("http.route", cl.path),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, cl.body)
	if err != nil {
		return fmt.Errorf("build %s request failed: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(logModule, "request failed", map[string]interface{}{
			"op": cl.op, "request_id": requestID, "error": err.Error(),
		})
		return &TransportError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: cl.op, Err: fmt.Errorf("read response failed: %w", err)}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Debug(logModule, "request completed", map[string]interface{}{
		"op":          cl.op,
		"request_id":  requestID,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	if resp.StatusCode >= 300 {
		return &APIError{Op: cl.op, Status: resp.StatusCode, Detail: parseDetail(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: cl.op, Err: fmt.Errorf("parse response json failed: %w", err)}
	}
	return nil
}
