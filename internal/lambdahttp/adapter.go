// Package lambdahttp runs an http.Handler behind API Gateway HTTP APIs.
package lambdahttp

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
)

// Handler adapts an http.Handler into a Lambda handler for APIGatewayV2
// (payload format 2.0) events.
func Handler(h http.Handler) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return Serve(ctx, h, evt)
	}
}

// Serve converts evt into a request, runs h and captures the response.
// Malformed events answer 400 rather than failing the invocation.
func Serve(ctx context.Context, h http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := NewRequest(ctx, evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"error":"invalid request"}`,
		}, nil
	}
	rw := newResponseWriter()
	h.ServeHTTP(rw, req)
	return rw.response(), nil
}

// NewRequest builds the *http.Request that evt describes.
func NewRequest(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}
	if path == "" {
		path = "/"
	}
	target := path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		target += "?" + qs
	}

	body, err := decodeBody(evt)
	if err != nil {
		return nil, fmt.Errorf("lambdahttp: decode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("lambdahttp: build request: %w", err)
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if len(evt.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(evt.Cookies, "; "))
	}
	req.ContentLength = int64(len(body))
	req.RequestURI = target
	if host := strings.TrimSpace(evt.RequestContext.DomainName); host != "" {
		req.Host = host
	} else if host := headerValue(evt.Headers, "host"); host != "" {
		req.Host = host
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		req.RemoteAddr = ip
		if req.Header.Get("X-Real-Ip") == "" {
			req.Header.Set("X-Real-Ip", ip)
		}
	}
	if id := strings.TrimSpace(evt.RequestContext.RequestID); id != "" && req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", id)
	}
	return req, nil
}

type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) response() events.APIGatewayV2HTTPResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	out := events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{},
	}
	for k, values := range w.header {
		if strings.EqualFold(k, "Set-Cookie") {
			out.Cookies = append(out.Cookies, values...)
			continue
		}
		out.Headers[strings.ToLower(k)] = strings.Join(values, ",")
	}
	raw := w.body.Bytes()
	if utf8.Valid(raw) {
		out.Body = string(raw)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(raw)
		out.IsBase64Encoded = true
	}
	return out
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
