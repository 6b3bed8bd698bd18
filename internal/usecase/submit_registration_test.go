package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/infra/authapi"
	"github.com/callmetuna/padhneyAI/internal/infra/httpclient"
	"github.com/callmetuna/padhneyAI/internal/ports"
)

// --- fakes ---

// countingRegistrar returns a fixed response/error and counts calls.
type countingRegistrar struct {
	mu    sync.Mutex
	calls int
	last  domain.RegistrationRequest
	resp  domain.RegistrationResponse
	err   error
}

func (r *countingRegistrar) Register(_ context.Context, req domain.RegistrationRequest) (domain.RegistrationResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = req
	return r.resp, r.err
}

func (r *countingRegistrar) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// blockingRegistrar holds every call until release is closed.
type blockingRegistrar struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (r *blockingRegistrar) Register(_ context.Context, _ domain.RegistrationRequest) (domain.RegistrationResponse, error) {
	r.calls.Add(1)
	r.entered <- struct{}{}
	<-r.release
	return domain.RegistrationResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
}

type fakeStore struct {
	saved []domain.SubmissionRecord
	err   error
}

func (s *fakeStore) SaveSubmission(rec domain.SubmissionRecord) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, rec)
	return "sub-1", nil
}

func (s *fakeStore) ListSubmissions(_ int) ([]domain.SubmissionRecord, error) {
	return s.saved, nil
}

var (
	_ ports.Registrar       = (*countingRegistrar)(nil)
	_ ports.Registrar       = (*blockingRegistrar)(nil)
	_ ports.SubmissionStore = (*fakeStore)(nil)
)

func newHTTPSubmitter(t *testing.T, url string, opts ...SubmitOption) *SubmitRegistration {
	t.Helper()
	r, err := authapi.New(url)
	if err != nil {
		t.Fatalf("authapi.New: %v", err)
	}
	return NewSubmitRegistration(r, append([]SubmitOption{WithEndpoint(r.Endpoint())}, opts...)...)
}

// --- properties against a real HTTP server ---

func TestSubmit_PasswordMismatch_NoNetwork(t *testing.T) {
	reg := &countingRegistrar{}
	uc := NewSubmitRegistration(reg)

	for _, pair := range [][2]string{{"a", "b"}, {"secret", "Secret"}, {"", "x"}, {"pw ", "pw"}} {
		f := validForm()
		f.Password, f.ConfirmPassword = pair[0], pair[1]

		res, err := uc.Execute(context.Background(), f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.OK || res.Message != "Passwords do not match!" {
			t.Fatalf("expected mismatch failure, got %+v", res)
		}
		if res.Kind != domain.FailureValidation {
			t.Fatalf("expected validation kind, got %s", res.Kind)
		}
	}

	if reg.Calls() != 0 {
		t.Fatalf("expected zero network calls, got %d", reg.Calls())
	}
	if uc.State() != domain.StateFailed {
		t.Fatalf("expected failed state, got %s", uc.State())
	}
}

func TestSubmit_Success(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != domain.RegisterPath {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content-type %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"jwt":"token","user":{"id":7,"username":"Ada Lovelace"}}`))
	}))
	defer srv.Close()

	uc := newHTTPSubmitter(t, srv.URL)

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if got["username"] != "Ada Lovelace" || got["email"] != "ada@example.com" || got["password"] != "correct horse" {
		t.Fatalf("unexpected request body %v", got)
	}
	if _, ok := got["confirmPassword"]; ok {
		t.Fatalf("confirm password must not be sent")
	}
	if uc.State() != domain.StateSucceeded {
		t.Fatalf("expected succeeded, got %s", uc.State())
	}
}

func TestSubmit_ServerValidationMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":[{"messages":[{"message":"Email already taken"}]}]}`))
	}))
	defer srv.Close()

	uc := newHTTPSubmitter(t, srv.URL)

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK || res.Message != "Email already taken" {
		t.Fatalf("expected server message, got %+v", res)
	}
	if res.Kind != domain.FailureServerValidation || res.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected classification %+v", res)
	}
}

func TestSubmit_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	var logs bytes.Buffer
	uc := newHTTPSubmitter(t, "http://"+addr, WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK || res.Message != "Error signing up" || res.Kind != domain.FailureTransport {
		t.Fatalf("expected transport failure, got %+v", res)
	}
	if !strings.Contains(logs.String(), "submit.transport_failed") {
		t.Fatalf("expected the cause to be logged, got %s", logs.String())
	}
	if strings.Contains(logs.String(), "correct horse") {
		t.Fatalf("password leaked into logs")
	}
}

func TestSubmit_UnexpectedErrorShape_Hardened(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"error":"Bad Request","message":"Invalid input"}`))
	}))
	defer srv.Close()

	uc := newHTTPSubmitter(t, srv.URL)

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil {
		t.Fatalf("expected no panic and no error, got %v", err)
	}
	if res.OK || res.Message != "Registration failed" {
		t.Fatalf("expected fallback message, got %+v", res)
	}
	if res.Kind != domain.FailureUnexpectedShape {
		t.Fatalf("expected unexpected shape kind, got %s", res.Kind)
	}
}

func TestSubmit_NoCachingTwoCallsForIdenticalInput(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	uc := newHTTPSubmitter(t, srv.URL)
	form := validForm()

	for i := 0; i < 2; i++ {
		res, err := uc.Execute(context.Background(), form)
		if err != nil || !res.OK {
			t.Fatalf("call %d: res=%+v err=%v", i, res, err)
		}
	}

	if hits.Load() != 2 {
		t.Fatalf("expected 2 independent requests, got %d", hits.Load())
	}
}

// --- edge cases ---

func TestSubmit_NonJSONBodies(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"success with html", http.StatusOK, "<html>ok</html>"},
		{"success with empty body", http.StatusNoContent, ""},
		{"gateway error page", http.StatusBadGateway, "<html>502 Bad Gateway</html>"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reg := &countingRegistrar{resp: domain.RegistrationResponse{StatusCode: c.status, Body: []byte(c.body)}}
			store := &fakeStore{}
			uc := NewSubmitRegistration(reg, WithSubmissionStore(store))

			res, err := uc.Execute(context.Background(), validForm())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.OK || res.Kind != domain.FailureTransport || res.Message != domain.MsgTransportFailure {
				t.Fatalf("expected malformed response as transport failure, got %+v", res)
			}
			if len(store.saved) != 1 || store.saved[0].TransportKind != domain.TransportMalformed {
				t.Fatalf("expected malformed kind recorded, got %+v", store.saved)
			}
		})
	}
}

func TestSubmit_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	exec := httpclient.NewExecutor(httpclient.WithTimeout(30 * time.Millisecond))
	r, err := authapi.New(srv.URL, authapi.WithExecutor(exec))
	if err != nil {
		t.Fatalf("authapi.New: %v", err)
	}
	store := &fakeStore{}
	uc := NewSubmitRegistration(r, WithSubmissionStore(store))

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != domain.FailureTransport || res.Message != "Error signing up" {
		t.Fatalf("expected transport failure, got %+v", res)
	}
	if store.saved[0].TransportKind != domain.TransportTimeout {
		t.Fatalf("expected timeout recorded, got %s", store.saved[0].TransportKind)
	}
}

func TestSubmit_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	uc := newHTTPSubmitter(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := uc.Execute(ctx, validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != domain.FailureTransport {
		t.Fatalf("expected transport failure, got %+v", res)
	}
}

func TestSubmit_RejectsReentrantCalls(t *testing.T) {
	reg := &blockingRegistrar{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	uc := NewSubmitRegistration(reg)

	done := make(chan domain.RegistrationResult, 1)
	go func() {
		res, _ := uc.Execute(context.Background(), validForm())
		done <- res
	}()

	<-reg.entered
	if uc.State() != domain.StateSubmitting {
		t.Fatalf("expected submitting, got %s", uc.State())
	}

	_, err := uc.Execute(context.Background(), validForm())
	if err == nil {
		t.Fatalf("expected re-entrant call to be rejected")
	}
	if !errors.Is(err, domain.ErrSubmissionInProgress) || !domain.IsKind(err, domain.KindBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}

	close(reg.release)
	res := <-done
	if !res.OK {
		t.Fatalf("expected first submission to succeed, got %+v", res)
	}
	if reg.calls.Load() != 1 {
		t.Fatalf("expected exactly one network call, got %d", reg.calls.Load())
	}

	// Once settled, the form can be submitted again.
	go func() { <-reg.entered }()
	if _, err := uc.Execute(context.Background(), validForm()); err != nil {
		t.Fatalf("expected submit after completion to be accepted: %v", err)
	}
}

func TestSubmit_NonTransportRegistrarError(t *testing.T) {
	reg := &countingRegistrar{err: &domain.OpError{
		Op:   "httpclient.build",
		Kind: domain.KindInvalidConfig,
		Err:  domain.ErrInvalidRequest,
	}}
	uc := NewSubmitRegistration(reg)

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != domain.FailureTransport || res.Message != domain.MsgTransportFailure {
		t.Fatalf("expected generic failure, got %+v", res)
	}
}

// --- recording ---

func TestSubmit_RecordsOutcomeWithoutFormValues(t *testing.T) {
	reg := &countingRegistrar{resp: domain.RegistrationResponse{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"message":[{"messages":[{"message":"Email already taken"}]}]}`),
		Latency:    42 * time.Millisecond,
	}}
	store := &fakeStore{}
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	uc := NewSubmitRegistration(reg,
		WithSubmissionStore(store),
		WithClock(func() time.Time { return start }),
		WithEndpoint("http://auth.test/api/auth/local/register"),
	)

	if _, err := uc.Execute(context.Background(), validForm()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("expected one record, got %d", len(store.saved))
	}
	rec := store.saved[0]
	if rec.Outcome != "server_validation" || rec.StatusCode != 400 || rec.LatencyMS != 42 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Message != "Email already taken" || !rec.StartedAt.Equal(start) {
		t.Fatalf("unexpected record %+v", rec)
	}

	b, _ := json.Marshal(rec)
	for _, secret := range []string{"Ada Lovelace", "ada@example.com", "correct horse"} {
		if bytes.Contains(b, []byte(secret)) {
			t.Fatalf("record leaked form value %q: %s", secret, b)
		}
	}
}

func TestSubmit_StoreFailureDoesNotChangeResult(t *testing.T) {
	reg := &countingRegistrar{resp: domain.RegistrationResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	uc := NewSubmitRegistration(reg, WithSubmissionStore(&fakeStore{err: errors.New("disk full")}))

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil || !res.OK {
		t.Fatalf("expected success despite store error, res=%+v err=%v", res, err)
	}
}

// bigJSON returns a valid JSON document larger than the executor's read bound,
// with the validation message near the start.
func bigJSON(withMessage bool) string {
	head := `{"jwt":"token","user":{"id":1},`
	if withMessage {
		head = `{"statusCode":400,"message":[{"messages":[{"id":"Auth.form.error.email.taken","message":"Email already taken"}]}],`
	}
	return head + `"padding":"` + strings.Repeat("x", 300*1024) + `"}`
}

func TestSubmit_LargeBodies(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   domain.RegistrationResult
	}{
		{
			name:   "2xx success",
			status: http.StatusOK,
			body:   bigJSON(false),
			want:   domain.Success(http.StatusOK),
		},
		{
			name:   "error message near the start",
			status: http.StatusBadRequest,
			body:   bigJSON(true),
			want:   domain.Failure(domain.FailureServerValidation, "Email already taken", http.StatusBadRequest),
		},
		{
			name:   "error without message",
			status: http.StatusBadRequest,
			body:   bigJSON(false),
			want:   domain.Failure(domain.FailureUnexpectedShape, "Registration failed", http.StatusBadRequest),
		},
		{
			name:   "2xx html",
			status: http.StatusOK,
			body:   "<html>" + strings.Repeat("x", 300*1024),
			want:   domain.Failure(domain.FailureTransport, "Error signing up", http.StatusOK),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(c.status)
				_, _ = io.WriteString(w, c.body)
			}))
			defer srv.Close()

			res, err := newHTTPSubmitter(t, srv.URL).Execute(context.Background(), validForm())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res != c.want {
				t.Fatalf("got %+v, want %+v", res, c.want)
			}
		})
	}
}

type panickingRegistrar struct{ calls int }

func (r *panickingRegistrar) Register(_ context.Context, _ domain.RegistrationRequest) (domain.RegistrationResponse, error) {
	r.calls++
	if r.calls == 1 {
		panic("registrar exploded")
	}
	return domain.RegistrationResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
}

func TestSubmit_PanicDoesNotWedgeMachine(t *testing.T) {
	reg := &panickingRegistrar{}
	uc := NewSubmitRegistration(reg)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected the panic to propagate")
			}
		}()
		_, _ = uc.Execute(context.Background(), validForm())
	}()

	if got := uc.State(); got != domain.StateFailed {
		t.Fatalf("expected failed after panic, got %s", got)
	}

	res, err := uc.Execute(context.Background(), validForm())
	if err != nil || !res.OK {
		t.Fatalf("expected a fresh submission to run, res=%+v err=%v", res, err)
	}
}
