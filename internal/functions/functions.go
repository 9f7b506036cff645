// Package functions adapts the ingestion and query services to API gateway
// proxy events, the shape Netlify hands to Go functions.
package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"toolshelf/internal/catalog"
	"toolshelf/internal/ingest"
)

type Response = events.APIGatewayProxyResponse

type cors struct {
	methods string
	headers string
}

var (
	uploadCORS = cors{methods: "POST, OPTIONS", headers: "Content-Type, X-Admin-Secret"}
	queryCORS  = cors{methods: "GET, OPTIONS", headers: "Content-Type"}
)

func (p cors) headerMap() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": p.headers,
		"Access-Control-Allow-Methods": p.methods,
	}
}

type Handlers struct {
	ingester *ingest.Ingester
	catalog  *catalog.Service
	logger   *zap.Logger
}

type Option func(*Handlers)

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func New(ingester *ingest.Ingester, catalog *catalog.Service, opts ...Option) *Handlers {
	h := &Handlers{
		ingester: ingester,
		catalog:  catalog,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddTools handles the bulk upload function.
func (h *Handlers) AddTools(ctx context.Context, req events.APIGatewayProxyRequest) (Response, error) {
	if req.HTTPMethod == http.MethodOptions {
		return preflight(uploadCORS), nil
	}
	report, err := h.ingester.Ingest(ctx, ingest.Upload{
		Secret:      header(req, "X-Admin-Secret"),
		ContentType: header(req, "Content-Type"),
		Body:        []byte(req.Body),
		Base64:      req.IsBase64Encoded,
	})
	if err != nil {
		ierr := ingest.AsError(err)
		return jsonResponse(ierr.StatusCode(), uploadCORS, ierr.Body()), nil
	}
	return jsonResponse(http.StatusOK, uploadCORS, report), nil
}

// GetTools handles the paginated listing function.
func (h *Handlers) GetTools(ctx context.Context, req events.APIGatewayProxyRequest) (Response, error) {
	if req.HTTPMethod == http.MethodOptions {
		return preflight(queryCORS), nil
	}
	page, err := h.catalog.List(ctx, catalog.ParseQuery(queryValues(req)))
	if err != nil {
		h.logger.Error("list tools failed", zap.Error(err))
		return jsonResponse(http.StatusInternalServerError, queryCORS, errorBody("failed to load tools")), nil
	}
	return jsonResponse(http.StatusOK, queryCORS, page), nil
}

// GetCategories handles the category listing function.
func (h *Handlers) GetCategories(ctx context.Context, req events.APIGatewayProxyRequest) (Response, error) {
	if req.HTTPMethod == http.MethodOptions {
		return preflight(queryCORS), nil
	}
	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		return jsonResponse(http.StatusInternalServerError, queryCORS, errorBody("failed to load categories")), nil
	}
	return jsonResponse(http.StatusOK, queryCORS, map[string]any{"categories": categories}), nil
}

func preflight(p cors) Response {
	return Response{StatusCode: http.StatusOK, Headers: p.headerMap(), Body: ""}
}

func jsonResponse(status int, p cors, payload any) Response {
	headers := p.headerMap()
	headers["Content-Type"] = "application/json"
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody(err.Error()))
	}
	return Response{StatusCode: status, Headers: headers, Body: string(body)}
}

func errorBody(detail string) map[string]string {
	return map[string]string{
		"error":  ingest.KindInternal.String(),
		"detail": detail,
	}
}

// header looks name up case-insensitively; gateways differ on casing.
func header(req events.APIGatewayProxyRequest, name string) string {
	if value, ok := req.Headers[name]; ok {
		return value
	}
	for key, value := range req.Headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	for key, values := range req.MultiValueHeaders {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func queryValues(req events.APIGatewayProxyRequest) url.Values {
	values := url.Values{}
	for key, list := range req.MultiValueQueryStringParameters {
		values[key] = append([]string(nil), list...)
	}
	for key, value := range req.QueryStringParameters {
		if _, ok := values[key]; !ok {
			values.Set(key, value)
		}
	}
	return values
}
