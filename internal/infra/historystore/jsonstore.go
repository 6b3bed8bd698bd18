package historystore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/ports"
)

const defaultDir = "submissions"
const indexFile = "index.jsonl"
const maskValue = "********"

// JSONStore writes one JSON file per submission plus an append-only index.
type JSONStore struct {
	rootDir        string
	dirName        string
	maskingEnabled bool
	now            func() time.Time
	newID          func() string
}

type Option func(*JSONStore)

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

// WithIDs overrides record ID generation.
func WithIDs(gen func() string) Option {
	return func(s *JSONStore) { s.newID = gen }
}

func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	dir := cfg.History.Dir
	if strings.TrimSpace(dir) == "" {
		dir = defaultDir
	}

	s := &JSONStore{
		rootDir:        root,
		dirName:        dir,
		maskingEnabled: cfg.Masking.Enabled,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.SubmissionStore = (*JSONStore)(nil)

func (s *JSONStore) Dir() string {
	if filepath.IsAbs(s.dirName) {
		return s.dirName
	}
	return filepath.Join(s.rootDir, s.dirName)
}

func (s *JSONStore) SaveSubmission(rec domain.SubmissionRecord) (string, error) {
	dir := s.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "historystore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	toSave := rec
	if toSave.ID == "" {
		toSave.ID = s.newID()
	}
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = s.now()
	}
	toSave.StartedAt = toSave.StartedAt.UTC()
	if !toSave.FinishedAt.IsZero() {
		toSave.FinishedAt = toSave.FinishedAt.UTC()
	}

	if s.maskingEnabled {
		toSave.Endpoint = maskEndpoint(toSave.Endpoint)
	}

	outcome := slugify(toSave.Outcome)
	if outcome == "" {
		outcome = "submission"
	}
	filename := fmt.Sprintf("%s_%s_%s.json", toSave.StartedAt.Format("20060102T150405Z"), outcome, shortID(toSave.ID))
	path := filepath.Join(dir, filename)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "historystore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "historystore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "historystore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if err := s.appendIndex(dir, toSave); err != nil {
		return toSave.ID, &domain.OpError{
			Op:   "historystore.index",
			Kind: domain.KindExecution,
			Path: filepath.Join(dir, indexFile),
			Err:  err,
		}
	}

	return toSave.ID, nil
}

// ListSubmissions returns up to limit records, newest first. limit <= 0 means all.
func (s *JSONStore) ListSubmissions(limit int) ([]domain.SubmissionRecord, error) {
	path := filepath.Join(s.Dir(), indexFile)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.SubmissionRecord{}, nil
		}
		return nil, &domain.OpError{
			Op:   "historystore.list",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	var all []domain.SubmissionRecord
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var rec domain.SubmissionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, &domain.OpError{
				Op:   "historystore.list",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("line %d: %w", line, err),
			}
		}
		all = append(all, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.OpError{
			Op:   "historystore.list",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	out := make([]domain.SubmissionRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *JSONStore) appendIndex(dir string, rec domain.SubmissionRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// maskEndpoint hides credentials embedded in the endpoint URL.
func maskEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.User == nil {
		return endpoint
	}
	u.User = url.User(maskValue)
	return u.String()
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			// any other char -> dash
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
