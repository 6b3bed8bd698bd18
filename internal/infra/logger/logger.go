package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/callmetuna/padhneyAI/internal/domain"
)

const (
	DirName  = ".padhney"
	FileName = "padhney.log"
)

// EmailKey is the attribute masked when Config.MaskEmails is set.
const EmailKey = "email"

type Config struct {
	Root  string
	Debug bool

	// MaskEmails mirrors masking.enabled in padhney.yaml.
	MaskEmails bool
}

var (
	mu      sync.RWMutex
	global  = discard()
	logFile *os.File
	logPath string
)

// Setup points L() at <root>/.padhney/logs/padhney.log. On error L() stays
// silent and no cleanup is returned.
func Setup(cfg Config) (func() error, error) {
	root := filepath.Clean(cfg.Root)
	if root == "" {
		root = "."
	}

	dir := filepath.Join(root, DirName, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		reset()
		return nil, err
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		reset()
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: replaceAttr(cfg.MaskEmails),
	}
	if cfg.Debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	mu.Lock()
	global = slog.New(slog.NewJSONHandler(f, opts))
	logFile = f
	logPath = path
	mu.Unlock()

	L().Info("logger.initialized",
		"path", path,
		"debug", cfg.Debug,
		"mask_emails", cfg.MaskEmails,
	)

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		logPath = ""
		global = discard()
		return cerr
	}

	return cleanup, nil
}

func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Path is the active log file, or "" when logging is off.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func replaceAttr(maskEmails bool) func([]string, slog.Attr) slog.Attr {
	return func(_ []string, a slog.Attr) slog.Attr {
		switch {
		case a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime:
			a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
		case maskEmails && a.Key == EmailKey && a.Value.Kind() == slog.KindString:
			a.Value = slog.StringValue(domain.MaskEmail(a.Value.String()))
		}
		return a
	}
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	global = discard()
	logFile = nil
	logPath = ""
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
