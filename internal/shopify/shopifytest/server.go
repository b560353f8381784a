// Package shopifytest runs an in-memory fake of the customer and metafield
// endpoints of the Admin REST API. Behaviour switches let tests reproduce the
// real store's quirks: fuzzy search, eventual consistency and missing ids.
package shopifytest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	APIVersion = "2024-10"
	Token      = "shpat_test"
)

// Customer is the fake's stored record.
type Customer struct {
	ID         int64
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	Tags       string
	Password   string
	Metafields []Metafield
}

// Metafield is a stored attribute.
type Metafield struct {
	ID        int64  `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// Call records one request the fake received.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

type failure struct {
	status int
	body   string
	times  int
}

// Server is the fake store.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	customers map[int64]*Customer
	nextID    int64
	nextMFID  int64
	calls     []Call
	failures  map[string]*failure

	// FuzzySearch makes search return prefix matches the way the real
	// index tokenizes addresses.
	FuzzySearch bool
	// OmitCreateID strips the id from create responses.
	OmitCreateID bool
	// SearchLag hides records from this many searches after they are created.
	SearchLag int
	// ConfirmEmail, when set, replaces the email on single-record reads.
	ConfirmEmail string

	lag map[int64]int
}

// NewServer starts a fake and registers its shutdown with t.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		customers: make(map[int64]*Customer),
		nextID:    1000,
		nextMFID:  5000,
		failures:  make(map[string]*failure),
		lag:       make(map[int64]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the versioned API root to hand to shopify.WithBaseURL.
func (s *Server) BaseURL() string {
	return s.URL + "/admin/api/" + APIVersion
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/admin/api/{version}", func(r chi.Router) {
		r.Get("/customers/search.json", s.search)
		r.Post("/customers.json", s.create)
		r.Get("/customers/{id:[0-9]+}.json", s.get)
		r.Put("/customers/{id:[0-9]+}.json", s.update)
		r.Get("/customers/{id:[0-9]+}/metafields.json", s.listMetafields)
		r.Post("/customers/{id:[0-9]+}/metafields.json", s.createMetafield)
		r.Put("/customers/{id:[0-9]+}/metafields/{mid:[0-9]+}.json", s.updateMetafield)
	})
	return r
}

// Seed stores a customer directly and returns its id.
func (s *Server) Seed(c Customer) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	}
	for i := range c.Metafields {
		if c.Metafields[i].ID == 0 {
			s.nextMFID++
			c.Metafields[i].ID = s.nextMFID
		}
	}
	s.customers[c.ID] = &c
	return c.ID
}

// Customer returns a copy of a stored customer.
func (s *Server) Customer(id int64) (Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return Customer{}, false
	}
	cp := *c
	cp.Metafields = append([]Metafield(nil), c.Metafields...)
	return cp, true
}

// CustomerByEmail finds a stored customer by exact email.
func (s *Server) CustomerByEmail(email string) (Customer, bool) {
	s.mu.Lock()
	var id int64
	for _, c := range s.customers {
		if strings.EqualFold(c.Email, email) {
			id = c.ID
			break
		}
	}
	s.mu.Unlock()
	if id == 0 {
		return Customer{}, false
	}
	return s.Customer(id)
}

// CustomerCount is the number of stored customers.
func (s *Server) CustomerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers)
}

// FailNext makes the next times requests matching "METHOD /path-suffix"
// answer status with body.
func (s *Server) FailNext(method, pathSuffix string, status int, body string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+pathSuffix] = &failure{status: status, body: body, times: times}
}

// Calls returns every recorded request.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CountCalls counts requests by method whose path ends with suffix.
func (s *Server) CountCalls(method, suffix string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasSuffix(c.Path, suffix) {
			n++
		}
	}
	return n
}

// MutatingCalls counts non-GET requests.
func (s *Server) MutatingCalls() int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method != http.MethodGet {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Header: r.Header.Clone(),
		})
		var inject *failure
		for key, f := range s.failures {
			method, suffix, _ := strings.Cut(key, " ")
			if method == r.Method && strings.HasSuffix(r.URL.Path, suffix) && f.times > 0 {
				f.times--
				inject = f
				break
			}
		}
		s.mu.Unlock()

		if r.Header.Get("X-Shopify-Access-Token") != Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"errors": "[API] Invalid API key or access token"})
			return
		}
		if inject != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(inject.status)
			_, _ = w.Write([]byte(inject.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	needle := strings.ToLower(strings.Trim(strings.TrimPrefix(query, "email:"), `"`))

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.customers))
	for id := range s.customers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []map[string]any{}
	for _, id := range ids {
		c := s.customers[id]
		if s.lag[id] > 0 {
			s.lag[id]--
			continue
		}
		email := strings.ToLower(c.Email)
		match := email == needle
		if s.FuzzySearch {
			match = strings.HasPrefix(email, needle) || strings.HasPrefix(needle, email)
		}
		if match {
			out = append(out, map[string]any{"id": c.ID, "email": c.Email, "tags": c.Tags})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": out})
}

type customerBody struct {
	Customer struct {
		ID        int64   `json:"id"`
		Email     string  `json:"email"`
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		Phone     string  `json:"phone"`
		Password  string  `json:"password"`
		Tags      *string `json:"tags"`
	} `json:"customer"`
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body customerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": "bad json"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.customers {
		if strings.EqualFold(c.Email, body.Customer.Email) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"errors": map[string][]string{"email": {"has already been taken"}},
			})
			return
		}
	}
	s.nextID++
	c := &Customer{
		ID:        s.nextID,
		Email:     body.Customer.Email,
		FirstName: body.Customer.FirstName,
		LastName:  body.Customer.LastName,
		Phone:     body.Customer.Phone,
		Password:  body.Customer.Password,
	}
	if body.Customer.Tags != nil {
		c.Tags = *body.Customer.Tags
	}
	s.customers[c.ID] = c
	if s.SearchLag > 0 {
		s.lag[c.ID] = s.SearchLag
	}

	if s.OmitCreateID {
		writeJSON(w, http.StatusCreated, map[string]any{"customer": map[string]any{"email": c.Email}})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"customer": s.render(c)})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[pathID(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": "Not Found"})
		return
	}
	out := s.render(c)
	if s.ConfirmEmail != "" {
		out["email"] = s.ConfirmEmail
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": out})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var body customerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": "bad json"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[pathID(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": "Not Found"})
		return
	}
	if v := body.Customer.FirstName; v != "" {
		c.FirstName = v
	}
	if v := body.Customer.LastName; v != "" {
		c.LastName = v
	}
	if v := body.Customer.Phone; v != "" {
		c.Phone = v
	}
	if v := body.Customer.Email; v != "" {
		c.Email = v
	}
	if body.Customer.Tags != nil {
		c.Tags = *body.Customer.Tags
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": s.render(c)})
}

func (s *Server) listMetafields(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[pathID(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metafields": append([]Metafield{}, c.Metafields...)})
}

type metafieldBody struct {
	Metafield Metafield `json:"metafield"`
}

func (s *Server) createMetafield(w http.ResponseWriter, r *http.Request) {
	var body metafieldBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": "bad json"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[pathID(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": "Not Found"})
		return
	}
	mf := body.Metafield
	if mf.Value == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": map[string][]string{"value": {"can't be blank"}},
		})
		return
	}
	for _, existing := range c.Metafields {
		if existing.Namespace == mf.Namespace && existing.Key == mf.Key {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"errors": map[string][]string{"key": {"must be unique within this namespace on this resource"}},
			})
			return
		}
	}
	s.nextMFID++
	mf.ID = s.nextMFID
	c.Metafields = append(c.Metafields, mf)
	writeJSON(w, http.StatusCreated, map[string]any{"metafield": mf})
}

func (s *Server) updateMetafield(w http.ResponseWriter, r *http.Request) {
	var body metafieldBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": "bad json"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[pathID(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": "Not Found"})
		return
	}
	mid := pathID(r, "mid")
	for i := range c.Metafields {
		if c.Metafields[i].ID == mid {
			c.Metafields[i].Value = body.Metafield.Value
			if body.Metafield.Type != "" {
				c.Metafields[i].Type = body.Metafield.Type
			}
			writeJSON(w, http.StatusOK, map[string]any{"metafield": c.Metafields[i]})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"errors": "Not Found"})
}

func (s *Server) render(c *Customer) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"email":      c.Email,
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"phone":      c.Phone,
		"tags":       c.Tags,
	}
}

func pathID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
