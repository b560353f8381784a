// Package handler exposes registration and site-id validation over HTTP.
// Every outcome is a 200 JSON body; failures carry ok=false and a code.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slammedialab/vercel-siteid/internal/platform/middleware"
	"github.com/slammedialab/vercel-siteid/internal/registration"
	"github.com/slammedialab/vercel-siteid/internal/siteid"
	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
	"github.com/slammedialab/vercel-siteid/pkg/platform/httputil"
	"github.com/slammedialab/vercel-siteid/pkg/requestcontext"
)

// Registrar runs one reconciliation.
type Registrar interface {
	Register(ctx context.Context, req registration.Request) (*registration.Result, error)
}

// SiteChecker resolves a site id.
type SiteChecker interface {
	Validate(ctx context.Context, raw string) (siteid.Result, error)
}

// Handler serves POST /register and GET /validate-site-id.
type Handler struct {
	registrar      Registrar
	sites          SiteChecker
	logger         *slog.Logger
	missing        []string
	requestTimeout time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithMissingConfig makes /register answer missing_config with the given
// variable names instead of calling the registrar.
func WithMissingConfig(names []string) Option {
	return func(h *Handler) {
		h.missing = append([]string(nil), names...)
	}
}

// WithRequestTimeout bounds each registration, retries included.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.requestTimeout = d
	}
}

func New(registrar Registrar, sites SiteChecker, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Handler{
		registrar: registrar,
		sites:     sites,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.Timeout(h.requestTimeout)).Post("/register", h.handleRegister)
	r.Get("/validate-site-id", h.handleValidateSiteID)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if len(h.missing) > 0 {
		h.logger.ErrorContext(ctx, "registration refused, store configuration missing",
			"missing", h.missing,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusOK, registerResponse{
			Error:   "Server is missing configuration",
			Code:    string(dErrors.CodeMissingConfig),
			Missing: h.missing,
		})
		return
	}

	body, err := httputil.DecodeJSON[registerRequest](w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid register request body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, registerFailure(err))
		return
	}
	sanitize(body)

	res, err := h.registrar.Register(ctx, body.toDomain())
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, registerFailure(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, registerSuccess(res))
}

func (h *Handler) handleValidateSiteID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.sites.Validate(ctx, r.URL.Query().Get("siteId"))
	if err != nil {
		h.logger.WarnContext(ctx, "site id validation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, validateResponse{
			Error: dErrors.MessageOf(err),
			Code:  string(dErrors.CodeOf(err)),
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, validateResponse{
		Valid:       res.Valid,
		AccountName: res.AccountName,
		AccountID:   res.AccountID,
	})
}
