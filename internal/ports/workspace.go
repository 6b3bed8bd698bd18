package ports

import "github.com/callmetuna/padhneyAI/internal/domain"

type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}
