// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
	// TraceIDHeader carries an upstream trace id, passed through untouched.
	TraceIDHeader = "X-Trace-ID"
)

// maxIDLength bounds client supplied ids before they reach the logs.
const maxIDLength = 128

type requestIDsKey struct{}

// requestIDs is stored once per request under requestIDsKey.
type requestIDs struct {
	request string
	trace   string
}

// RequestID tags every request with an id, reusing a well-formed incoming
// X-Request-ID and generating a UUID otherwise. A well-formed X-Trace-ID is
// echoed back and made available through GetTraceID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := requestIDs{
			request: r.Header.Get(RequestIDHeader),
			trace:   r.Header.Get(TraceIDHeader),
		}
		if !validID(ids.request) {
			ids.request = uuid.NewString()
		}
		if !validID(ids.trace) {
			ids.trace = ""
		}

		w.Header().Set(RequestIDHeader, ids.request)
		if ids.trace != "" {
			w.Header().Set(TraceIDHeader, ids.trace)
		}

		ctx := context.WithValue(r.Context(), requestIDsKey{}, ids)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validID accepts printable ASCII without spaces.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, c := range []byte(id) {
		if c <= ' ' || c > '~' {
			return false
		}
	}
	return true
}

func idsFromContext(ctx context.Context) requestIDs {
	ids, _ := ctx.Value(requestIDsKey{}).(requestIDs)
	return ids
}

// GetRequestID returns the request id, or "" outside RequestID.
func GetRequestID(ctx context.Context) string {
	return idsFromContext(ctx).request
}

// GetTraceID returns the caller's trace id, if it sent one.
func GetTraceID(ctx context.Context) string {
	return idsFromContext(ctx).trace
}
