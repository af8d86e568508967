package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
)

// Apply layers the file values on top of base; empty values keep the base.
func Apply(path string, base domain.Settings, fc FileConfig) (domain.Settings, error) {
	s := base

	setString(&s.API.BaseURL, fc.API.BaseURL)
	setString(&s.API.ListPath, fc.API.ListPath)
	setString(&s.API.DetailPath, fc.API.DetailPath)
	setString(&s.API.Token, fc.API.Token)
	if strings.TrimSpace(fc.API.Timeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(fc.API.Timeout))
		if err != nil {
			return domain.Settings{}, invalidField(path, "api.timeout", err.Error())
		}
		s.API.Timeout = d
	}

	if fc.Fetch.Concurrency != nil {
		s.Fetch.Concurrency = *fc.Fetch.Concurrency
	}
	if fc.Fetch.RequestsPerSecond != nil {
		s.Fetch.RequestsPerSecond = *fc.Fetch.RequestsPerSecond
	}
	if fc.Fetch.Burst != nil {
		s.Fetch.Burst = *fc.Fetch.Burst
	}
	if fc.Fetch.MaxBodyBytes != nil {
		if *fc.Fetch.MaxBodyBytes <= 0 {
			return domain.Settings{}, invalidField(path, "fetch.max_body_bytes", "must be positive")
		}
		s.Fetch.MaxBodyBytes = *fc.Fetch.MaxBodyBytes
	}

	setString(&s.Output.Path, fc.Output.Path)
	setString(&s.Output.SheetName, fc.Output.SheetName)
	setString(&s.Output.TableName, fc.Output.TableName)
	setString(&s.Output.TableStyle, fc.Output.TableStyle)
	setString(&s.Output.ReportDir, fc.Output.ReportDir)
	if fc.Output.WriteReport != nil {
		s.Output.WriteReport = *fc.Output.WriteReport
	}

	if fc.Log.Debug != nil {
		s.Log.Debug = *fc.Log.Debug
	}
	setString(&s.Log.Dir, fc.Log.Dir)

	return s, nil
}

// Env variable names honored by ApplyEnv.
const (
	EnvToken   = "BIANX_TOKEN"
	EnvBaseURL = "BIANX_BASE_URL"
	EnvOutput  = "BIANX_OUTPUT"
)

// ApplyEnv lets the environment override the file; the token in particular
// should live there rather than in a committed config file.
func ApplyEnv(s domain.Settings, lookup func(string) (string, bool)) domain.Settings {
	if v, ok := lookup(EnvToken); ok && strings.TrimSpace(v) != "" {
		s.API.Token = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		s.API.BaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvOutput); ok && strings.TrimSpace(v) != "" {
		s.Output.Path = strings.TrimSpace(v)
	}
	return s
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
