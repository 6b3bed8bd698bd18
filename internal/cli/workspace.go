package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/infra/authapi"
	"github.com/callmetuna/padhneyAI/internal/infra/historystore"
	"github.com/callmetuna/padhneyAI/internal/infra/httpclient"
	"github.com/callmetuna/padhneyAI/internal/infra/workspacefinder"
	"github.com/callmetuna/padhneyAI/internal/ports"
	"github.com/callmetuna/padhneyAI/internal/usecase"
)

// sessionOverrides are CLI flags; they win over every other config source.
type sessionOverrides struct {
	baseURL string
	timeout time.Duration
	save    bool
}

type session struct {
	root  string
	found bool
	cfg   domain.Config

	registrar *authapi.Registrar
	store     ports.SubmissionStore
	history   *historystore.JSONStore
}

func loadSession(workspaceFlag string, ov sessionOverrides) (*session, error) {
	root, found, err := locateWorkspace(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.Resolve(root)
	if err != nil {
		return nil, err
	}

	if s := strings.TrimSpace(ov.baseURL); s != "" {
		cfg.Endpoint.BaseURL = s
	}
	if ov.timeout < 0 {
		return nil, fmt.Errorf("invalid --timeout %s: must be positive", ov.timeout)
	}
	if ov.timeout > 0 {
		cfg.HTTP.Timeout = ov.timeout
	}
	if ov.save {
		cfg.History.Enabled = true
	}

	client := httpclient.New(httpclient.DefaultConfig().WithTimeout(cfg.HTTP.Timeout))
	exec := httpclient.NewExecutor(
		httpclient.WithClient(client),
		httpclient.WithTimeout(cfg.HTTP.Timeout),
	)

	registrar, err := authapi.New(cfg.Endpoint.BaseURL, authapi.WithExecutor(exec))
	if err != nil {
		return nil, err
	}

	history := historystore.NewJSONStore(root, cfg)

	ws := &session{
		root:      root,
		found:     found,
		cfg:       cfg,
		registrar: registrar,
		history:   history,
	}
	if cfg.History.Enabled {
		ws.store = history
	}
	return ws, nil
}

func (s *session) submitter(log *slog.Logger) *usecase.SubmitRegistration {
	opts := []usecase.SubmitOption{
		usecase.WithLogger(log),
		usecase.WithEndpoint(s.registrar.Endpoint()),
	}
	if s.store != nil {
		opts = append(opts, usecase.WithSubmissionStore(s.store))
	}
	return usecase.NewSubmitRegistration(s.registrar, opts...)
}

// locateWorkspace returns the workspace root. Without one, the working
// directory is used and found is false.
func locateWorkspace(workspaceFlag string) (root string, found bool, err error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", false, fmt.Errorf("invalid workspace path: %w", err)
		}
		_, statErr := os.Stat(filepath.Join(abs, workspacefinder.ConfigFileName))
		return abs, statErr == nil, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("get working directory: %w", err)
	}

	root, err = workspacefinder.NewFinder().FindRoot(wd)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return wd, false, nil
		}
		return "", false, err
	}
	return root, true, nil
}

// resolveWorkspaceRoot is the strict variant used by commands that need an
// initialized workspace.
func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	root, found, err := locateWorkspace(workspaceFlag)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("workspace not found from %q (tip: run `padhney init`): %w", root, domain.ErrNotFound)
	}
	return root, nil
}
