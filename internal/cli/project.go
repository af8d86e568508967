package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/config"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/projectfinder"
)

type projectCtx struct {
	root       string
	configPath string // "" when running on defaults and environment only
	settings   domain.Settings
}

// loadProject resolves the project root and settings. An explicit config path wins;
// otherwise the nearest bianx config above the working directory is used, and
// without one the working directory acts as root.
func loadProject(configFlag string) (*projectCtx, error) {
	root, configPath, err := resolveProject(configFlag)
	if err != nil {
		return nil, err
	}

	s, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if s.Log.Dir == "" && configPath != "" {
		s.Log.Dir = filepath.Join(".bianx", "logs")
	}

	s.Output.Path = resolveRelative(root, s.Output.Path)
	s.Output.ReportDir = resolveRelative(root, s.Output.ReportDir)
	s.Log.Dir = resolveRelative(root, s.Log.Dir)

	return &projectCtx{
		root:       root,
		configPath: configPath,
		settings:   s,
	}, nil
}

func resolveProject(configFlag string) (root string, configPath string, err error) {
	c := strings.TrimSpace(configFlag)
	if c != "" {
		abs, err := filepath.Abs(c)
		if err != nil {
			return "", "", fmt.Errorf("invalid config path: %w", err)
		}
		if !fileExists(abs) {
			return "", "", &domain.OpError{
				Op:   "cli.config",
				Kind: domain.KindNotFound,
				Path: abs,
				Err:  domain.ErrNotFound,
			}
		}
		return filepath.Dir(abs), abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("get working directory: %w", err)
	}
	wd, _ = filepath.Abs(wd)

	found, err := projectfinder.NewFinder().FindRoot(wd)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) || errors.Is(err, domain.ErrNotFound) {
			return wd, "", nil
		}
		return "", "", err
	}
	return found, config.Find(found), nil
}

func resolveRelative(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(root, p))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
