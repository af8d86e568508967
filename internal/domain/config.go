package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Settings is the full configuration of one export run.
// It is built by infra/config and passed explicitly into the use case.
type Settings struct {
	API    APISettings
	Fetch  FetchSettings
	Output OutputSettings
	Log    LogSettings
}

type APISettings struct {
	BaseURL    string
	ListPath   string
	DetailPath string // template, {{bianId}} is replaced per domain
	Token      string
	Timeout    time.Duration
}

type FetchSettings struct {
	// Concurrency caps in-flight detail requests. 1 keeps the lookups strictly sequential.
	Concurrency       int
	RequestsPerSecond float64 // 0 disables pacing
	Burst             int
	MaxBodyBytes      int64
}

type OutputSettings struct {
	Path        string
	SheetName   string
	TableName   string
	TableStyle  string
	ReportDir   string
	WriteReport bool
}

type LogSettings struct {
	Debug bool
	Dir   string
}

const (
	DefaultBaseURL    = "https://api-v3.bian.org"
	DefaultListPath   = "/ServiceDomainsBasic"
	DefaultDetailPath = "/ServiceDomainsByBianId/{{bianId}}"
	DefaultOutputPath = "output/service_domains_with_functional_patterns.xlsx"
	PlaceholderToken  = "YOUR_ACCESS_TOKEN"
)

// DefaultSettings provides sane defaults if the config file is partially missing.
func DefaultSettings() Settings {
	return Settings{
		API: APISettings{
			BaseURL:    DefaultBaseURL,
			ListPath:   DefaultListPath,
			DetailPath: DefaultDetailPath,
			Token:      PlaceholderToken,
			Timeout:    30 * time.Second,
		},
		Fetch: FetchSettings{
			Concurrency:  1,
			Burst:        1,
			MaxBodyBytes: 4 << 20,
		},
		Output: OutputSettings{
			Path:        DefaultOutputPath,
			SheetName:   "Service Domains",
			TableName:   "ServiceDomains",
			TableStyle:  "TableStyleMedium9",
			ReportDir:   "output/runs",
			WriteReport: true,
		},
	}
}

// Validate checks the settings without touching the network or the filesystem.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.API.BaseURL) == "" {
		return invalidSetting("api.base_url", "base url is required")
	}
	u, err := url.Parse(s.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalidSetting("api.base_url", fmt.Sprintf("not an absolute url: %q", s.API.BaseURL))
	}
	if strings.TrimSpace(s.API.ListPath) == "" {
		return invalidSetting("api.list_path", "list path is required")
	}
	if vars, err := TemplateVars(s.API.DetailPath); err != nil {
		return invalidSetting("api.detail_path", err.Error())
	} else if len(vars) != 1 || vars[0] != "bianId" {
		return invalidSetting("api.detail_path", fmt.Sprintf("detail path must reference only {{bianId}}, found %v", vars))
	}
	if strings.TrimSpace(s.API.Token) == "" {
		return invalidSetting("api.token", "token is required")
	}
	if s.API.Timeout < 0 {
		return invalidSetting("api.timeout", "timeout must not be negative")
	}
	if s.Fetch.Concurrency < 1 {
		return invalidSetting("fetch.concurrency", "concurrency must be at least 1")
	}
	if s.Fetch.RequestsPerSecond < 0 {
		return invalidSetting("fetch.requests_per_second", "rate must not be negative")
	}
	if s.Fetch.RequestsPerSecond > 0 && s.Fetch.Burst < 1 {
		return invalidSetting("fetch.burst", "burst must be at least 1 when pacing is enabled")
	}
	if strings.TrimSpace(s.Output.Path) == "" {
		return invalidSetting("output.path", "output path is required")
	}
	if !strings.EqualFold(fileExt(s.Output.Path), ".xlsx") {
		return invalidSetting("output.path", "output file must have the .xlsx extension")
	}
	if strings.TrimSpace(s.Output.SheetName) == "" || len(s.Output.SheetName) > 31 {
		return invalidSetting("output.sheet_name", "sheet name must be 1-31 characters")
	}
	if !isTableName(s.Output.TableName) {
		return invalidSetting("output.table_name", fmt.Sprintf("invalid table name %q", s.Output.TableName))
	}
	if strings.TrimSpace(s.Output.TableStyle) == "" {
		return invalidSetting("output.table_style", "table style is required")
	}
	return nil
}

// TemplateVars lists the {{name}} placeholders in s in order of appearance.
// Whitespace inside the braces is ignored; unclosed or empty placeholders are errors.
func TemplateVars(s string) ([]string, error) {
	var out []string
	rest := s
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			return out, nil
		}
		rest = rest[start+2:]
		end := strings.Index(rest, "}}")
		if end == -1 {
			return nil, fmt.Errorf("unclosed template expression in %q", s)
		}
		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return nil, fmt.Errorf("empty template expression in %q", s)
		}
		out = append(out, key)
		rest = rest[end+2:]
	}
}

// UsesPlaceholderToken reports whether the credential was never configured.
func (s Settings) UsesPlaceholderToken() bool {
	return s.API.Token == PlaceholderToken
}

func fileExt(p string) string {
	i := strings.LastIndex(p, ".")
	if i < 0 {
		return ""
	}
	return p[i:]
}

// isTableName follows the spreadsheet rules for defined names:
// a letter or underscore first, then letters, digits, underscores or dots.
func isTableName(s string) bool {
	if s == "" || len(s) > 255 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '.' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}

func invalidSetting(field, msg string) error {
	return &OpError{
		Op:   "settings.validate",
		Kind: KindInvalidConfig,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, ErrInvalidConfig),
	}
}
