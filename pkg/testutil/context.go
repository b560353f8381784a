package testutil

import (
	"net/http"
	"time"

	"github.com/slammedialab/vercel-siteid/pkg/requestcontext"
)

// WithRequestID sets the request id the RequestID middleware would have set.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithClient sets the client metadata the ClientMetadata middleware would
// have extracted.
func WithClient(req *http.Request, clientIP, userAgent, device string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent, device))
}

// WithTime pins the request time.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
