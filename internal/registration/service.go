package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/slammedialab/vercel-siteid/internal/audit"
	"github.com/slammedialab/vercel-siteid/internal/platform/metrics"
	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/internal/siteid"
	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
	"github.com/slammedialab/vercel-siteid/pkg/email"
	"github.com/slammedialab/vercel-siteid/pkg/platform/secrets"
	"github.com/slammedialab/vercel-siteid/pkg/requestcontext"
)

var tracer = otel.Tracer("github.com/slammedialab/vercel-siteid/internal/registration")

// Service runs the reconciliation workflow. It holds no per-request state
// and is safe for concurrent use.
type Service struct {
	store            CustomerStore
	sites            SiteValidator
	identity         *IdentityResolver
	audit            AuditPublisher
	logger           *slog.Logger
	metrics          *metrics.Metrics
	requiredTags     []string
	returnPassword   bool
	generatePassword bool
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAudit(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

// WithPasswordPolicy controls whether a freshly created record's password is
// returned, and whether one is generated when the caller sent none.
func WithPasswordPolicy(returnPassword, generatePassword bool) Option {
	return func(s *Service) {
		s.returnPassword = returnPassword
		s.generatePassword = generatePassword
	}
}

// WithRequiredTags adds tags merged onto every record besides ApprovedTag.
func WithRequiredTags(tags ...string) Option {
	return func(s *Service) {
		s.requiredTags = append(s.requiredTags, tags...)
	}
}

func NewService(store CustomerStore, sites SiteValidator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("customer store is required")
	}
	if sites == nil {
		return nil, errors.New("site validator is required")
	}
	s := &Service{
		store:          store,
		sites:          sites,
		logger:         slog.New(slog.DiscardHandler),
		requiredTags:   []string{ApprovedTag},
		returnPassword: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.identity = NewIdentityResolver(store, s.logger)
	return s, nil
}

// Register reconciles one request. Every failure is a coded domain error;
// steps after a failure do not run and earlier writes are not rolled back.
func (s *Service) Register(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "registration.Register")
	defer span.End()

	run := &reconciliation{svc: s}
	res, err := run.execute(ctx, req)

	s.metrics.ObserveRegistration(time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		s.recordFailure(ctx, run, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("registration.action", string(res.Action)),
		attribute.String("registration.customer_id", res.CustomerID.String()),
	)
	s.recordSuccess(ctx, res)
	return res, nil
}

func (s *Service) recordSuccess(ctx context.Context, res *Result) {
	s.metrics.IncrementRegistration(string(res.Action), "ok")
	s.logger.InfoContext(ctx, "registration reconciled",
		"action", res.Action,
		"customer_id", res.CustomerID.String(),
		"site_id", res.SiteID,
		"request_id", requestcontext.RequestID(ctx),
	)

	action := audit.ActionRegistrationUpdated
	if res.Action == ActionCreated {
		action = audit.ActionRegistrationCreated
	}
	s.emit(ctx, audit.Event{
		Action:     action,
		CustomerID: int64(res.CustomerID),
		Email:      res.Email,
		SiteID:     res.SiteID,
	})
}

func (s *Service) recordFailure(ctx context.Context, run *reconciliation, err error) {
	code := dErrors.CodeOf(err)
	s.metrics.IncrementRegistration(string(run.action), string(code))
	s.logger.WarnContext(ctx, "registration failed",
		"code", code,
		"field", dErrors.FieldOf(err),
		"step", run.step,
		"customer_id", run.customerID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)

	action := audit.ActionRegistrationFailed
	if code == dErrors.CodeIdentityMismatch {
		action = audit.ActionIdentityMismatch
	}
	s.emit(ctx, audit.Event{
		Action:     action,
		CustomerID: int64(run.customerID),
		Email:      run.req.Email,
		SiteID:     run.req.SiteID,
		Code:       string(code),
		Reason:     dErrors.MessageOf(err),
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit != nil {
		s.audit.Emit(ctx, event)
	}
}

// reconciliation carries one request through the state machine.
type reconciliation struct {
	svc        *Service
	req        Request
	site       siteid.Result
	step       string
	action     Action
	customerID shopify.CustomerID
	password   string
}

func (r *reconciliation) execute(ctx context.Context, raw Request) (*Result, error) {
	r.step = "validate"
	req, err := normalize(raw)
	r.req = req
	if err != nil {
		return nil, err
	}
	if err := r.validateSite(ctx); err != nil {
		return nil, err
	}

	var found bool
	_ = r.run(ctx, "lookup", func(ctx context.Context) error {
		r.customerID, found = r.svc.identity.FindExact(ctx, r.req.Email)
		return nil
	})

	switch {
	case found:
		r.action = ActionUpdated
	case r.req.UpdateOnly:
		return nil, dErrors.NewField(dErrors.CodeNoExistingAccount, "email", "No existing account found for this email")
	default:
		if err := r.run(ctx, "create", r.create); err != nil {
			return nil, err
		}
	}

	if r.action == ActionUpdated {
		if err := r.run(ctx, "update", r.update); err != nil {
			return nil, err
		}
	}

	var confirmed *shopify.Customer
	if err := r.run(ctx, "confirm", func(ctx context.Context) error {
		confirmed, err = r.confirm(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if err := r.run(ctx, "tag_merge", func(ctx context.Context) error {
		return r.mergeTags(ctx, confirmed)
	}); err != nil {
		return nil, err
	}
	if err := r.run(ctx, "attribute_upsert", r.upsertAttributes); err != nil {
		return nil, err
	}

	r.step = "done"
	res := &Result{
		Action:     r.action,
		CustomerID: r.customerID,
		Email:      r.req.Email,
		SiteID:     r.site.SiteID,
	}
	if r.action == ActionCreated && r.svc.returnPassword {
		res.Password = r.password
	}
	return res, nil
}

// run executes one step inside its own span.
func (r *reconciliation) run(ctx context.Context, step string, fn func(context.Context) error) error {
	r.step = step
	ctx, span := tracer.Start(ctx, "registration."+step)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		return err
	}
	return nil
}

func (r *reconciliation) validateSite(ctx context.Context) error {
	r.step = "validate_site"
	site, err := r.svc.sites.Validate(ctx, r.req.SiteID)
	if err != nil {
		return err
	}
	if !site.Valid {
		return dErrors.NewField(dErrors.CodeInvalidSiteID, "siteId", "Invalid Site ID")
	}
	r.site = site
	r.req.SiteID = site.SiteID
	return nil
}

func (r *reconciliation) create(ctx context.Context) error {
	password := r.req.Password
	if password == "" && r.svc.generatePassword {
		generated, err := secrets.Generate(0)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "Could not generate a password")
		}
		password = generated
	}
	if len(password) < minPasswordLength {
		return dErrors.NewField(dErrors.CodeValidation, "password",
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	first, last := r.req.FirstName, r.req.LastName
	if first == "" || last == "" {
		derivedFirst, derivedLast := email.DeriveNameFromEmail(r.req.Email)
		if first == "" {
			first = derivedFirst
		}
		if last == "" {
			last = derivedLast
		}
	}

	created, err := r.svc.store.Create(ctx, shopify.CustomerInput{
		Email:     r.req.Email,
		FirstName: first,
		LastName:  last,
		Phone:     r.req.Phone,
		Password:  password,
		Tags:      r.svc.requiredTags,
	})
	if err != nil {
		if !shopify.IsEmailTaken(err) {
			return remoteError(err)
		}
		// The search index lagged behind an existing record. One recovery
		// lookup; a hit continues as an update.
		id, ok := r.svc.identity.FindExact(ctx, r.req.Email)
		if !ok {
			return remoteError(err)
		}
		r.customerID = id
		r.action = ActionUpdated
		return nil
	}

	r.action = ActionCreated
	r.password = password
	if !created.ID.IsZero() {
		r.customerID = created.ID
		return nil
	}

	id, ok := r.svc.identity.FindExact(ctx, r.req.Email)
	if !ok {
		return dErrors.New(dErrors.CodeCreateNoIdentifier, "Account was created but no identifier was returned")
	}
	r.customerID = id
	return nil
}

// update writes only the mutable fields that were supplied. Email and
// password are never sent.
func (r *reconciliation) update(ctx context.Context) error {
	in := shopify.CustomerInput{
		FirstName: r.req.FirstName,
		LastName:  r.req.LastName,
		Phone:     r.req.Phone,
	}
	if in.FirstName == "" && in.LastName == "" && in.Phone == "" {
		return nil
	}
	if _, err := r.svc.store.Update(ctx, r.customerID, in); err != nil {
		return remoteError(err)
	}
	return nil
}

func (r *reconciliation) confirm(ctx context.Context) (*shopify.Customer, error) {
	record, err := r.svc.store.Get(ctx, r.customerID)
	if err != nil {
		return nil, remoteError(err)
	}
	if !email.SameIdentity(record.Email, r.req.Email) {
		return nil, dErrors.New(dErrors.CodeIdentityMismatch, "Account email does not match the request")
	}
	return record, nil
}

func (r *reconciliation) mergeTags(ctx context.Context, record *shopify.Customer) error {
	merged, changed := MergeTags(record.TagList(), r.svc.requiredTags...)
	if !changed {
		return nil
	}
	if err := r.svc.store.SetTags(ctx, r.customerID, merged); err != nil {
		return remoteError(err)
	}
	return nil
}

func (r *reconciliation) upsertAttributes(ctx context.Context) error {
	existing, err := r.svc.store.ListMetafields(ctx, r.customerID)
	if err != nil {
		return remoteError(err)
	}
	for _, attr := range desiredAttributes(r.req, r.site) {
		if _, err := upsertAttribute(ctx, r.svc.store, r.customerID, existing, attr); err != nil {
			return err
		}
	}
	return nil
}

func remoteError(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	msg := "Customer store request failed"
	if rce, ok := shopify.AsRemoteCallError(err); ok && rce.StatusCode != 0 {
		msg = fmt.Sprintf("Customer store request failed (%d %s)", rce.StatusCode, rce.Status)
	}
	return dErrors.Wrap(err, dErrors.CodeRemoteCall, msg)
}
