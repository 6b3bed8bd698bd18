package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/ports"
	"github.com/callmetuna/padhneyAI/internal/usecase/servererr"
)

// SubmitRegistration validates a sign-up form, sends it to the auth service
// and turns whatever happens into a single RegistrationResult.
type SubmitRegistration struct {
	registrar ports.Registrar
	store     ports.SubmissionStore
	log       *slog.Logger
	machine   *domain.SubmitMachine
	now       func() time.Time

	endpoint string
}

type SubmitOption func(*SubmitRegistration)

// WithSubmissionStore records every accepted attempt. Nil disables recording.
func WithSubmissionStore(s ports.SubmissionStore) SubmitOption {
	return func(uc *SubmitRegistration) { uc.store = s }
}

func WithLogger(l *slog.Logger) SubmitOption {
	return func(uc *SubmitRegistration) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithClock overrides time.Now (useful for tests).
func WithClock(now func() time.Time) SubmitOption {
	return func(uc *SubmitRegistration) { uc.now = now }
}

// WithEndpoint labels logs and records with the target endpoint.
func WithEndpoint(endpoint string) SubmitOption {
	return func(uc *SubmitRegistration) { uc.endpoint = endpoint }
}

func NewSubmitRegistration(r ports.Registrar, opts ...SubmitOption) *SubmitRegistration {
	uc := &SubmitRegistration{
		registrar: r,
		log:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		machine:   &domain.SubmitMachine{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// State reports where the submit action is in its lifecycle.
func (uc *SubmitRegistration) State() domain.SubmitState {
	return uc.machine.State()
}

// Execute performs one submission. The only error it returns is a KindBusy
// OpError when another submission is still in flight; every other outcome,
// including network failures, is reported through the result.
func (uc *SubmitRegistration) Execute(ctx context.Context, form domain.RegistrationForm) (domain.RegistrationResult, error) {
	if err := uc.machine.Begin(); err != nil {
		uc.log.Warn("submit.rejected", "reason", "in_progress")
		return domain.RegistrationResult{}, err
	}

	var res domain.RegistrationResult
	defer func() { uc.machine.Finish(res) }()

	started := uc.now()
	res, att := uc.submit(ctx, form)

	uc.record(started, res, att)
	return res, nil
}

// attempt carries diagnostics that do not belong in the user-facing result.
type attempt struct {
	latency       time.Duration
	transportKind domain.TransportErrorKind
}

func (uc *SubmitRegistration) submit(ctx context.Context, form domain.RegistrationForm) (domain.RegistrationResult, attempt) {
	if !form.PasswordsMatch() {
		uc.log.Info("submit.validation_failed", "reason", "password_mismatch")
		return domain.Failure(domain.FailureValidation, domain.MsgPasswordMismatch, 0), attempt{}
	}

	uc.log.Info("submit.started",
		"endpoint", uc.endpoint,
		"email", form.Email,
	)

	resp, err := uc.registrar.Register(ctx, form.Request())
	if err != nil {
		kind := transportKind(err)
		uc.log.Error("submit.transport_failed",
			"endpoint", uc.endpoint,
			"kind", kind,
			"err", err.Error(),
		)
		return domain.Failure(domain.FailureTransport, domain.MsgTransportFailure, 0),
			attempt{latency: resp.Latency, transportKind: kind}
	}

	att := attempt{latency: resp.Latency}

	if resp.OK() {
		if resp.Truncated {
			// Only the head of a large body was read; it cannot parse fully.
			if !servererr.IsJSONPrefix(resp.Body) {
				return uc.malformed(resp, att)
			}
		} else if !servererr.IsJSON(resp.Body) {
			return uc.malformed(resp, att)
		}
		uc.log.Info("submit.succeeded",
			"status", resp.StatusCode,
			"truncated", resp.Truncated,
			"latency_ms", resp.Latency.Milliseconds(),
		)
		return domain.Success(resp.StatusCode), att
	}

	extract := servererr.Extract
	if resp.Truncated {
		extract = servererr.ExtractPrefix
	}

	msg, err := extract(resp.Body)
	switch {
	case errors.Is(err, servererr.ErrNotJSON):
		return uc.malformed(resp, att)

	case err != nil:
		uc.log.Warn("submit.unexpected_error_shape",
			"status", resp.StatusCode,
			"err", err.Error(),
			"truncated", resp.Truncated,
		)
		return domain.Failure(domain.FailureUnexpectedShape, servererr.FallbackMessage, resp.StatusCode), att

	default:
		uc.log.Info("submit.rejected_by_server",
			"status", resp.StatusCode,
			"message", msg,
		)
		return domain.Failure(domain.FailureServerValidation, msg, resp.StatusCode), att
	}
}

func (uc *SubmitRegistration) malformed(resp domain.RegistrationResponse, att attempt) (domain.RegistrationResult, attempt) {
	uc.log.Error("submit.transport_failed",
		"endpoint", uc.endpoint,
		"kind", domain.TransportMalformed,
		"status", resp.StatusCode,
		"body_bytes", len(resp.Body),
		"truncated", resp.Truncated,
	)
	att.transportKind = domain.TransportMalformed
	return domain.Failure(domain.FailureTransport, domain.MsgTransportFailure, resp.StatusCode), att
}

func (uc *SubmitRegistration) record(started time.Time, res domain.RegistrationResult, att attempt) {
	if uc.store == nil {
		return
	}

	rec := domain.SubmissionRecord{
		Endpoint:      uc.endpoint,
		StartedAt:     started,
		FinishedAt:    uc.now(),
		Outcome:       res.Outcome(),
		StatusCode:    res.StatusCode,
		LatencyMS:     att.latency.Milliseconds(),
		Message:       res.UserMessage(),
		TransportKind: att.transportKind,
	}

	if _, err := uc.store.SaveSubmission(rec); err != nil {
		uc.log.Warn("submit.record_failed", "err", err.Error())
	}
}

func transportKind(err error) domain.TransportErrorKind {
	var te *domain.TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return domain.ClassifyTransport(err)
}
