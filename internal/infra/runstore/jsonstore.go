package runstore

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/ports"
)

const defaultReportsDir = "output/runs"
const maskValue = "********"

type JSONStore struct {
	dir        string
	secrets    []string
	writeIndex bool
	now        func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: <dir>/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

// WithSecrets registers literal values that must never reach disk.
func WithSecrets(secrets ...string) Option {
	return func(s *JSONStore) {
		for _, v := range secrets {
			if strings.TrimSpace(v) != "" {
				s.secrets = append(s.secrets, v)
			}
		}
	}
}

func NewJSONStore(dir string, opts ...Option) *JSONStore {
	if strings.TrimSpace(dir) == "" {
		dir = defaultReportsDir
	}

	s := &JSONStore{
		dir:        dir,
		writeIndex: false,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ReportStore = (*JSONStore)(nil)

func (s *JSONStore) SaveReport(report domain.RunReport) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	ts := report.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := s.mask(report)
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}

	slug := slugify(strings.TrimSuffix(filepath.Base(report.OutputPath), filepath.Ext(report.OutputPath)))
	if slug == "" {
		slug = "run"
	}

	base := fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), slug)
	id, path := s.uniquePath(base)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(id, filepath.Base(path), toSave)
	}

	return id, nil
}

func (s *JSONStore) uniquePath(base string) (string, string) {
	id := base
	for n := 2; ; n++ {
		path := filepath.Join(s.dir, id+".json")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return id, path
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

func (s *JSONStore) appendIndex(id, filename string, report domain.RunReport) error {
	type idx struct {
		ID        string    `json:"id"`
		RunID     string    `json:"run_id"`
		File      string    `json:"file"`
		Output    string    `json:"output"`
		Total     int       `json:"total"`
		Fallback  int       `json:"fallback"`
		StartedAt time.Time `json:"started_at"`
	}
	line, err := json.Marshal(idx{
		ID:        id,
		RunID:     report.ID,
		File:      filename,
		Output:    report.OutputPath,
		Total:     report.Total,
		Fallback:  report.Fallback,
		StartedAt: report.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(s.dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
	return nil
}

// mask returns a masked copy (does NOT mutate the input).
func (s *JSONStore) mask(report domain.RunReport) domain.RunReport {
	out := report
	out.BaseURL = maskURL(s.maskString(report.BaseURL))
	out.Outcomes = make([]domain.DetailOutcome, len(report.Outcomes))

	for i, o := range report.Outcomes {
		c := o
		c.Message = s.maskString(o.Message)
		if o.MissingFields != nil {
			c.MissingFields = make([]string, len(o.MissingFields))
			copy(c.MissingFields, o.MissingFields)
		}
		out.Outcomes[i] = c
	}
	return out
}

func (s *JSONStore) maskString(v string) string {
	for _, secret := range s.secrets {
		v = strings.ReplaceAll(v, secret, maskValue)
	}
	return v
}

// maskURL hides credentials and sensitive query parameters.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.User != nil {
		u.User = url.User(maskValue)
	}
	q := u.Query()
	changed := false
	for k := range q {
		if isSensitiveKey(k) {
			q.Set(k, maskValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func isSensitiveKey(k string) bool {
	kk := strings.ToLower(k)
	return strings.Contains(kk, "token") ||
		strings.Contains(kk, "secret") ||
		strings.Contains(kk, "password") ||
		strings.Contains(kk, "api-key") ||
		strings.Contains(kk, "apikey")
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
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
