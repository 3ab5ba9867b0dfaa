package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// maxLoggedBody caps how much of a request or response body is kept for the log line.
const maxLoggedBody = 8 << 10

const redacted = "[FILTERED]"

// secretKeys are dropped from headers and JSON bodies wherever they appear as a substring.
var secretKeys = []string{"password", "token", "authorization", "secret", "session", "credential", "cookie"}

// personalKeys are kept but coarsened: coordinates to roughly 100m, salary hidden.
var personalKeys = map[string]func(interface{}) interface{}{
	"latitude":  coarsen,
	"longitude": coarsen,
	"salary":    func(interface{}) interface{} { return redacted },
}

func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())

			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				logger.InfoContext(r.Context(), "websocket handshake", "request_id", reqID, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			logger.InfoContext(r.Context(), "incoming request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", scrubHeaders(r.Header),
				"body", scrubBody(peekBody(r)),
			)

			rec := &responseRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "response",
				"request_id", reqID,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.written,
				"body", scrubBody(rec.body.Bytes()),
			)
		})
	}
}

// peekBody reads up to maxLoggedBody bytes and puts them back in front of the
// unread remainder so the handler still sees the whole body.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int
	body    bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		rw.body.Write(b[:min(len(b), room)])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *responseRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func isSecret(key string) bool {
	key = strings.ToLower(key)
	for _, s := range secretKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func scrubHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSecret(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// scrubBody returns the body as a log-safe string. Non-JSON bodies that
// mention a secret key are replaced wholesale.
func scrubBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		if isSecret(string(body)) {
			return "[FILTERED - Contains sensitive data]"
		}
		return string(body)
	}
	out, err := json.Marshal(scrubValue(doc))
	if err != nil {
		return "[ERROR - Failed to marshal filtered JSON]"
	}
	return string(out)
}

func scrubValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for key, value := range t {
			switch {
			case isSecret(key):
				out[key] = redacted
			case personalKeys[strings.ToLower(key)] != nil:
				out[key] = personalKeys[strings.ToLower(key)](value)
			default:
				out[key] = scrubValue(value)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = scrubValue(item)
		}
		return out
	default:
		return v
	}
}

func coarsen(v interface{}) interface{} {
	f, ok := v.(float64)
	if !ok {
		return v
	}
	return math.Round(f*1000) / 1000
}
