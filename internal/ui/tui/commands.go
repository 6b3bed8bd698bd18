package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/callmetuna/padhneyAI/internal/domain"
)

// submitGrace keeps the context deadline behind the HTTP timeout.
const submitGrace = 5 * time.Second

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd := deps.StartDir
		if wd == "" {
			return workspaceRefreshedMsg{found: false, err: errors.New("start dir is empty")}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, false)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdSubmit(deps Deps, form domain.RegistrationForm, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		if deps.Submitter == nil {
			return submitDoneMsg{err: errors.New("Submitter is nil")}
		}

		ctx := context.Background()
		if deps.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, deps.Timeout+submitGrace)
			defer cancel()
		}

		res, err := deps.Submitter.Execute(ctx, form)
		if err != nil {
			log.Warn("tui.submit.rejected", "err", err.Error())
		} else if deps.Debug {
			log.Debug("tui.submit.done", "outcome", res.Outcome(), "status", res.StatusCode)
		}
		return submitDoneMsg{res: res, err: err}
	}
}
