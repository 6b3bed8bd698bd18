package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/ports"
)

// Submitter runs one sign-up attempt (usecase.SubmitRegistration).
type Submitter interface {
	Execute(ctx context.Context, form domain.RegistrationForm) (domain.RegistrationResult, error)
}

type Deps struct {
	WorkspaceLocator     ports.WorkspaceLocator
	WorkspaceInitializer ports.WorkspaceInitializer
	Submitter            Submitter

	Endpoint string
	Timeout  time.Duration
	StartDir string

	Logger *slog.Logger
	Debug  bool
}
