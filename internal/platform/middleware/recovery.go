package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
	"github.com/slammedialab/vercel-siteid/pkg/platform/httputil"
	"github.com/slammedialab/vercel-siteid/pkg/requestcontext"
)

// Recovery turns a panic into the same 200 JSON failure body every other
// error gets.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				ctx := r.Context()
				logger.ErrorContext(ctx, "panic recovered",
					"panic", rec,
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
					"stack", string(debug.Stack()),
				)
				httputil.WriteJSON(w, http.StatusOK, map[string]any{
					"ok":    false,
					"error": "Internal error",
					"code":  dErrors.CodeInternal,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
