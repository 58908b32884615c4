package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/generation"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

// fakeDB is an in-memory DBClient.
type fakeDB struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*db.User
	cvs     map[uuid.UUID]*db.SavedCV
	usage   []db.UsageRecord
	pingErr error
	saveErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users: make(map[uuid.UUID]*db.User),
		cvs:   make(map[uuid.UUID]*db.SavedCV),
	}
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

func (f *fakeDB) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = db.NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == email {
			return uuid.Nil, db.ErrDuplicateEmail
		}
	}
	now := time.Now()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeDB) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = db.NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeDB) SaveCV(_ context.Context, c *db.SavedCV) (*db.SavedCV, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	now := time.Now()
	if c.ID == uuid.Nil {
		stored := *c
		stored.ID = uuid.New()
		stored.CreatedAt, stored.UpdatedAt = now, now
		f.cvs[stored.ID] = &stored
		out := stored
		return &out, nil
	}
	existing, ok := f.cvs[c.ID]
	if !ok || existing.UserID != c.UserID {
		return nil, db.ErrCVNotFound
	}
	existing.Title, existing.CVData, existing.ThemeData, existing.UpdatedAt = c.Title, c.CVData, c.ThemeData, now
	out := *existing
	return &out, nil
}

func (f *fakeDB) GetCV(_ context.Context, userID, id uuid.UUID) (*db.SavedCV, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cvs[id]
	if !ok || c.UserID != userID {
		return nil, db.ErrCVNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeDB) ListCVs(_ context.Context, userID uuid.UUID) ([]db.SavedCVSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []db.SavedCVSummary{}
	for _, c := range f.cvs {
		if c.UserID == userID {
			list = append(list, db.SavedCVSummary{ID: c.ID, Title: c.Title, UpdatedAt: c.UpdatedAt})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list, nil
}

func (f *fakeDB) DeleteCV(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cvs[id]
	if !ok || c.UserID != userID {
		return db.ErrCVNotFound
	}
	delete(f.cvs, id)
	return nil
}

func (f *fakeDB) RecordUsage(_ context.Context, rec db.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage = append(f.usage, rec)
	return nil
}

func (f *fakeDB) CountUsageSince(_ context.Context, userID *uuid.UUID, ip string, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rec := range f.usage {
		switch {
		case userID != nil && rec.UserID != nil && *rec.UserID == *userID:
			n++
		case userID == nil && rec.UserID == nil && rec.IPAddress == ip:
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) usageRecords() []db.UsageRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]db.UsageRecord(nil), f.usage...)
}

// stubGenerator returns a canned result and records the request it saw.
type stubGenerator struct {
	mu     sync.Mutex
	result *generation.Result
	err    error
	calls  int
	last   generation.Request
}

func (s *stubGenerator) Generate(_ context.Context, req generation.Request) (*generation.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.result, nil
}

func (s *stubGenerator) lastRequest() generation.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// stubJobs resolves job URLs from a map.
type stubJobs map[string]string

func (j stubJobs) FetchJobDescription(_ context.Context, url string) (string, error) {
	text, ok := j[url]
	if !ok {
		return "", errors.New("HTTP request failed with status 404")
	}
	return text, nil
}

type testServerOptions struct {
	cfg       *config.Config
	generator *stubGenerator
	db        *fakeDB
	noDB      bool
	jobs      JobFetcher
}

type testServer struct {
	*Server
	db        *fakeDB
	generator *stubGenerator
}

func newTestServer(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()
	if opts.cfg == nil {
		cfg := config.Defaults()
		opts.cfg = &cfg
	}
	if opts.generator == nil {
		opts.generator = &stubGenerator{result: &generation.Result{Kind: generation.KindSummary, Text: "A summary."}}
	}
	deps := Deps{
		Config:    opts.cfg,
		Generator: opts.generator,
		IDs:       cv.NewCounterGenerator("id-"),
		Jobs:      opts.jobs,
		Logger:    zaptest.NewLogger(t),
	}
	if !opts.noDB {
		if opts.db == nil {
			opts.db = newFakeDB()
		}
		deps.DB = opts.db
		deps.JWT = &config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 24, Issuer: "cv-builder-test"}
		deps.Passwords = &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
	}

	s, err := New(deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &testServer{Server: s, db: opts.db, generator: opts.generator}
}

// do sends a request through the full handler chain.
func (ts *testServer) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:51234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

// postForm sends a form-encoded request.
func (ts *testServer) postForm(t *testing.T, path, form string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.RemoteAddr = "192.0.2.10:51234"
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

// register creates an account and returns a bearer header for it.
func (ts *testServer) register(t *testing.T, email string) (http.Header, uuid.UUID) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Test User", "email": email, "password": "correct-horse",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
			User  struct {
				ID uuid.UUID `json:"id"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return http.Header{"Authorization": {"Bearer " + resp.Data.Token}}, resp.Data.User.ID
}

// envelopeResponse is a decoded envelope with raw data.
type envelopeResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelopeResponse {
	t.Helper()
	var env envelopeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeFailure(t *testing.T, w *httptest.ResponseRecorder) failure {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.False(t, env.Success)
	var f failure
	require.NoError(t, json.Unmarshal(env.Data, &f))
	return f
}
