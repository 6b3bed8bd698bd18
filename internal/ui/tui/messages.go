package tui

import "github.com/callmetuna/padhneyAI/internal/domain"

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type submitDoneMsg struct {
	res domain.RegistrationResult
	err error
}
