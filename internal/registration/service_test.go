package registration

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/slammedialab/vercel-siteid/internal/audit"
	"github.com/slammedialab/vercel-siteid/internal/directory"
	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/internal/shopify/shopifytest"
	"github.com/slammedialab/vercel-siteid/internal/siteid"
	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
)

// =============================================================================
// Reconciliation Test Suite
// =============================================================================
// Runs the full workflow against the in-memory store fake, which reproduces
// fuzzy search, missing create ids and search lag.

type ServiceSuite struct {
	suite.Suite
	fake    *shopifytest.Server
	store   *shopify.Customers
	sites   *siteid.Validator
	audit   *audit.MemoryStore
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store, s.fake = newFakeStore(s.T())
	s.sites = siteid.New(directory.NewCache(nil, time.Minute))
	s.audit = audit.NewMemoryStore()
	s.service = s.newService()
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	opts = append([]Option{WithAudit(audit.NewPublisher(s.audit))}, opts...)
	svc, err := NewService(s.store, s.sites, opts...)
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) register(req Request) (*Result, error) {
	return s.service.Register(context.Background(), req)
}

func (s *ServiceSuite) recentEvents(limit int) []audit.Event {
	events, err := s.audit.ListRecent(context.Background(), limit)
	s.Require().NoError(err)
	return events
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

func (s *ServiceSuite) metafieldValue(id shopify.CustomerID, key string) string {
	c, ok := s.fake.Customer(int64(id))
	s.Require().True(ok)
	mf, n := metafield(c, AttributeNamespace, key)
	s.Equal(1, n, "exactly one %s attribute", key)
	return mf.Value
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ServiceSuite) TestNewService() {
	s.Run("nil store is rejected", func() {
		_, err := NewService(nil, s.sites)
		s.ErrorContains(err, "customer store is required")
	})

	s.Run("nil site validator is rejected", func() {
		_, err := NewService(s.store, nil)
		s.ErrorContains(err, "site validator is required")
	})

	s.Run("defaults return the password and do not generate one", func() {
		svc, err := NewService(s.store, s.sites)
		s.Require().NoError(err)
		s.True(svc.returnPassword)
		s.False(svc.generatePassword)
		s.Equal([]string{ApprovedTag}, svc.requiredTags)
	})
}

// =============================================================================
// Create path
// =============================================================================

func (s *ServiceSuite) TestRegister_CreatesNewRecord() {
	// Given no record exists for the email
	// When a valid request is registered
	res, err := s.register(Request{
		Email:    "New.Coach@Example.com",
		SiteID:   " 910001 ",
		Password: "Sup3rSecret!",
		Phone:    "(555) 123-4567",
	})

	// Then a record is created, tagged and annotated
	s.Require().NoError(err)
	s.Equal(ActionCreated, res.Action)
	s.Equal("new.coach@example.com", res.Email)
	s.Equal("910001", res.SiteID)
	s.Equal("Sup3rSecret!", res.Password)

	c, ok := s.fake.Customer(int64(res.CustomerID))
	s.Require().True(ok)
	s.Equal("new.coach@example.com", c.Email)
	s.Equal("New", c.FirstName)
	s.Equal("Coach", c.LastName)
	s.Equal("+15551234567", c.Phone)
	s.Contains(shopify.SplitTags(c.Tags), ApprovedTag)
	s.Equal("910001", s.metafieldValue(res.CustomerID, "site_id"))
	s.Equal("Slammedia Demo Academy", s.metafieldValue(res.CustomerID, "account_name"))
	s.Equal("ACC-910001", s.metafieldValue(res.CustomerID, "account_id"))

	s.Zero(s.fake.CountCalls(http.MethodPut, ".json"), "create seeds the tag, nothing to update")

	events := s.recentEvents(10)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRegistrationCreated, events[0].Action)
	s.Equal(int64(res.CustomerID), events[0].CustomerID)
}

func (s *ServiceSuite) TestRegister_CreateWithoutReturnedID() {
	// Given the store omits the id from create responses
	s.fake.OmitCreateID = true

	// When a new email registers
	res, err := s.register(Request{Email: "d@example.com", SiteID: "910001", Password: "Sup3rSecret!"})

	// Then the id is recovered by lookup and the workflow completes
	s.Require().NoError(err)
	s.Equal(ActionCreated, res.Action)
	s.False(res.CustomerID.IsZero())
	s.Equal("910001", s.metafieldValue(res.CustomerID, "site_id"))
}

func (s *ServiceSuite) TestRegister_CreateWithoutIdentifier() {
	// Given the id is omitted and search has not indexed the new record yet
	s.fake.OmitCreateID = true
	s.fake.SearchLag = 1

	_, err := s.register(Request{Email: "lag@example.com", SiteID: "910001", Password: "Sup3rSecret!"})

	s.requireCode(err, dErrors.CodeCreateNoIdentifier)
	s.Equal(1, s.fake.CustomerCount(), "the created record is not rolled back")
}

func (s *ServiceSuite) TestRegister_DuplicateEmailRecovery() {
	s.Run("recovery lookup finds the record and continues as update", func() {
		s.SetupTest()
		id := s.fake.Seed(shopifytest.Customer{Email: "dup@example.com", Tags: "vip"})
		// first search and its retry fail; create then reports the duplicate
		s.fake.FailNext(http.MethodGet, "/customers/search.json", http.StatusInternalServerError, `{}`, 2)

		res, err := s.register(Request{Email: "dup@example.com", SiteID: "910002", Password: "Sup3rSecret!"})

		s.Require().NoError(err)
		s.Equal(ActionUpdated, res.Action)
		s.Equal(shopify.CustomerID(id), res.CustomerID)
		s.Empty(res.Password)
		s.Equal(1, s.fake.CustomerCount())
	})

	s.Run("recovery lookup miss surfaces the create failure", func() {
		s.SetupTest()
		s.fake.Seed(shopifytest.Customer{Email: "dup@example.com"})
		s.fake.FailNext(http.MethodGet, "/customers/search.json", http.StatusInternalServerError, `{}`, 4)

		_, err := s.register(Request{Email: "dup@example.com", SiteID: "910002", Password: "Sup3rSecret!"})

		s.requireCode(err, dErrors.CodeRemoteCall)
		s.Contains(dErrors.MessageOf(err), "422")
	})
}

// =============================================================================
// Update path
// =============================================================================

func (s *ServiceSuite) TestRegister_UpdatesExistingRecord() {
	// Given a record with an unrelated tag
	id := s.fake.Seed(shopifytest.Customer{Email: "existing@example.com", FirstName: "Old", Tags: "vip", Password: "original"})

	// When the same email registers with a new name and a password
	res, err := s.register(Request{
		Email:     "EXISTING@example.com",
		FirstName: "Grace",
		SiteID:    "910003",
		Password:  "ignored-on-update",
		TitleRole: "Athletic Director",
	})

	// Then the record is updated in place, tags are merged and the password is untouched
	s.Require().NoError(err)
	s.Equal(ActionUpdated, res.Action)
	s.Equal(shopify.CustomerID(id), res.CustomerID)
	s.Empty(res.Password)

	c, _ := s.fake.Customer(id)
	s.Equal("Grace", c.FirstName)
	s.Equal("original", c.Password)
	s.Equal([]string{"vip", ApprovedTag}, shopify.SplitTags(c.Tags))
	s.Equal("910003", s.metafieldValue(res.CustomerID, "site_id"))
	s.Equal("Athletic Director", s.metafieldValue(res.CustomerID, "title_role"))
	s.Equal(1, s.fake.CustomerCount())

	for _, call := range s.fake.Calls() {
		s.NotContains(call.Body, "password", "%s %s", call.Method, call.Path)
	}
}

func (s *ServiceSuite) TestRegister_UpdateWithoutMutableFieldsSkipsWrite() {
	id := s.fake.Seed(shopifytest.Customer{Email: "quiet@example.com", Tags: "approved"})

	_, err := s.register(Request{Email: "quiet@example.com", SiteID: "910001"})

	s.Require().NoError(err)
	s.Zero(s.fake.CountCalls(http.MethodPut, "/customers/"+shopify.CustomerID(id).String()+".json"))
}

func (s *ServiceSuite) TestRegister_ApprovedTagInOtherCaseIsKept() {
	id := s.fake.Seed(shopifytest.Customer{Email: "caps@example.com", Tags: "VIP, Approved"})

	_, err := s.register(Request{Email: "caps@example.com", SiteID: "910001"})

	s.Require().NoError(err)
	s.Zero(s.fake.CountCalls(http.MethodPut, "/customers/"+shopify.CustomerID(id).String()+".json"))
	c, _ := s.fake.Customer(id)
	s.Equal([]string{"VIP", "Approved"}, shopify.SplitTags(c.Tags))
}

func (s *ServiceSuite) TestRegister_Idempotent() {
	req := Request{Email: "twice@example.com", SiteID: "910001", Password: "Sup3rSecret!", TitleRole: "Coach"}

	first, err := s.register(req)
	s.Require().NoError(err)
	second, err := s.register(req)
	s.Require().NoError(err)

	s.Equal(ActionCreated, first.Action)
	s.Equal(ActionUpdated, second.Action)
	s.Equal(first.CustomerID, second.CustomerID)
	s.Equal(1, s.fake.CustomerCount())

	c, _ := s.fake.Customer(int64(first.CustomerID))
	s.Equal([]string{ApprovedTag}, shopify.SplitTags(c.Tags))
	for _, key := range []string{"site_id", "account_name", "account_id", "title_role"} {
		_, n := metafield(c, AttributeNamespace, key)
		s.Equal(1, n, key)
	}
}

func (s *ServiceSuite) TestRegister_UpdateOnly() {
	s.Run("missing record is refused without creating", func() {
		s.SetupTest()
		_, err := s.register(Request{Email: "ghost@example.com", SiteID: "910001", UpdateOnly: true})

		s.requireCode(err, dErrors.CodeNoExistingAccount)
		s.Equal("email", dErrors.FieldOf(err))
		s.Zero(s.fake.CustomerCount())
		s.Zero(s.fake.MutatingCalls())
	})

	s.Run("existing record is updated", func() {
		s.SetupTest()
		s.fake.Seed(shopifytest.Customer{Email: "real@example.com"})

		res, err := s.register(Request{Email: "real@example.com", SiteID: "910001", UpdateOnly: true})
		s.Require().NoError(err)
		s.Equal(ActionUpdated, res.Action)
	})
}

// =============================================================================
// Guards
// =============================================================================

func (s *ServiceSuite) TestRegister_UnknownSiteMakesNoRemoteCalls() {
	_, err := s.register(Request{Email: "a@example.com", SiteID: "999999", Password: "Sup3rSecret!"})

	s.requireCode(err, dErrors.CodeInvalidSiteID)
	s.Equal("siteId", dErrors.FieldOf(err))
	s.Equal("Invalid Site ID", dErrors.MessageOf(err))
	s.Empty(s.fake.Calls())

	events := s.recentEvents(1)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionRegistrationFailed, events[0].Action)
	s.Equal(string(dErrors.CodeInvalidSiteID), events[0].Code)
}

func (s *ServiceSuite) TestRegister_ValidationFailsBeforeRemoteCalls() {
	_, err := s.register(Request{Email: "nope", SiteID: "910001"})

	s.requireCode(err, dErrors.CodeValidation)
	s.Empty(s.fake.Calls())
}

func (s *ServiceSuite) TestRegister_ConfirmationGuard() {
	// Given search resolves the email but the canonical record carries another
	s.fake.Seed(shopifytest.Customer{Email: "target@example.com"})
	s.fake.ConfirmEmail = "someone.else@example.com"

	_, err := s.register(Request{Email: "target@example.com", SiteID: "910001"})

	// Then nothing further is written
	s.requireCode(err, dErrors.CodeIdentityMismatch)
	s.Zero(s.fake.MutatingCalls())

	events := s.recentEvents(1)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionIdentityMismatch, events[0].Action)
	s.NotZero(events[0].CustomerID)
}

func (s *ServiceSuite) TestRegister_StepFailureStopsLaterSteps() {
	id := s.fake.Seed(shopifytest.Customer{Email: "tags@example.com"})
	s.fake.FailNext(http.MethodPut, "/customers/"+shopify.CustomerID(id).String()+".json", http.StatusServiceUnavailable, `{}`, 2)

	_, err := s.register(Request{Email: "tags@example.com", SiteID: "910001"})

	s.requireCode(err, dErrors.CodeRemoteCall)
	s.Zero(s.fake.CountCalls(http.MethodPost, "/metafields.json"))
}

// =============================================================================
// Password policy
// =============================================================================

func (s *ServiceSuite) TestRegister_PasswordPolicy() {
	s.Run("short password is rejected before create", func() {
		s.SetupTest()
		_, err := s.register(Request{Email: "short@example.com", SiteID: "910001", Password: "short"})

		s.requireCode(err, dErrors.CodeValidation)
		s.Equal("password", dErrors.FieldOf(err))
		s.Zero(s.fake.CountCalls(http.MethodPost, "/customers.json"))
	})

	s.Run("missing password is generated when enabled", func() {
		s.SetupTest()
		s.service = s.newService(WithPasswordPolicy(true, true))

		res, err := s.register(Request{Email: "gen@example.com", SiteID: "910001"})
		s.Require().NoError(err)
		s.GreaterOrEqual(len(res.Password), minPasswordLength)

		c, _ := s.fake.Customer(int64(res.CustomerID))
		s.Equal(res.Password, c.Password)
	})

	s.Run("password is withheld when echo is disabled", func() {
		s.SetupTest()
		s.service = s.newService(WithPasswordPolicy(false, false))

		res, err := s.register(Request{Email: "quiet@example.com", SiteID: "910001", Password: "Sup3rSecret!"})
		s.Require().NoError(err)
		s.Empty(res.Password)
	})
}

func (s *ServiceSuite) TestRegister_RequiredTags() {
	s.service = s.newService(WithRequiredTags("b2b"))

	res, err := s.register(Request{Email: "tagged@example.com", SiteID: "910001", Password: "Sup3rSecret!"})
	s.Require().NoError(err)

	c, _ := s.fake.Customer(int64(res.CustomerID))
	tags := shopify.SplitTags(c.Tags)
	s.Contains(tags, ApprovedTag)
	s.Contains(tags, "b2b")
	s.False(strings.Contains(c.Tags, "b2b, b2b"))
}
