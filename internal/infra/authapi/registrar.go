package authapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/infra/httpclient"
	"github.com/callmetuna/padhneyAI/internal/ports"
)

// Registrar posts sign-up requests to a Strapi-style auth service.
type Registrar struct {
	endpoint string
	exec     *httpclient.Executor
	newID    func() string
}

type Option func(*Registrar)

func WithExecutor(exec *httpclient.Executor) Option {
	return func(r *Registrar) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithRequestID overrides the X-Request-ID generator (useful for tests).
func WithRequestID(gen func() string) Option {
	return func(r *Registrar) { r.newID = gen }
}

// New builds a Registrar for baseURL; the registration path is appended to it.
func New(baseURL string, opts ...Option) (*Registrar, error) {
	endpoint, err := Endpoint(baseURL)
	if err != nil {
		return nil, err
	}

	r := &Registrar{
		endpoint: endpoint,
		exec:     httpclient.NewExecutor(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

var _ ports.Registrar = (*Registrar)(nil)

// Endpoint joins baseURL and the registration path. A missing scheme means http.
func Endpoint(baseURL string) (string, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return "", &domain.OpError{
			Op:   "authapi.endpoint",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("base url is empty: %w", domain.ErrInvalidConfig),
		}
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" {
		if err == nil {
			err = fmt.Errorf("missing host in %q", baseURL)
		}
		return "", &domain.OpError{
			Op:   "authapi.endpoint",
			Kind: domain.KindInvalidConfig,
			Err:  err,
		}
	}

	return strings.TrimRight(u.String(), "/") + domain.RegisterPath, nil
}

func (r *Registrar) Endpoint() string { return r.endpoint }

// Register issues exactly one POST. Errors are *domain.OpError of KindTransport
// wrapping a *domain.TransportError, except request-building problems.
func (r *Registrar) Register(ctx context.Context, req domain.RegistrationRequest) (domain.RegistrationResponse, error) {
	httpReq, err := httpclient.BuildRequest(ctx, httpclient.RequestSpec{
		Method: http.MethodPost,
		URL:    r.endpoint,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"X-Request-ID": r.newID(),
		},
		JSON: req,
	})
	if err != nil {
		return domain.RegistrationResponse{}, err
	}

	data, err := r.exec.Do(ctx, httpReq)
	if err != nil {
		return domain.RegistrationResponse{Latency: data.Duration}, &domain.OpError{
			Op:   "authapi.register",
			Kind: domain.KindTransport,
			Err:  domain.NewTransportError(err),
		}
	}

	return domain.RegistrationResponse{
		StatusCode: data.Status,
		Body:       data.BodyBytes,
		Truncated:  data.Truncated,
		Latency:    data.Duration,
	}, nil
}
