package ports

import (
	"context"

	"github.com/callmetuna/padhneyAI/internal/domain"
)

// Registrar sends one registration request to the auth service.
// A non-nil error means no usable response was received.
type Registrar interface {
	Register(ctx context.Context, req domain.RegistrationRequest) (domain.RegistrationResponse, error)
}
