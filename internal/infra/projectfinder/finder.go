package projectfinder

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/config"
	"github.com/souvikmukherjee/util-bian-modelling/internal/ports"
)

// Finder locates a project root by searching upward for a bianx config file.
type Finder struct {
	ConfigFiles []string // defaults to config.FileNames
}

func NewFinder() *Finder {
	return &Finder{ConfigFiles: config.FileNames}
}

var _ ports.ProjectLocator = (*Finder)(nil)

func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "projectfinder.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{
			Op:   "projectfinder.findroot",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	// If user passes a file path, use its directory.
	info, statErr := os.Stat(abs)
	if statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	cur := filepath.Clean(abs)
	for {
		for _, name := range f.ConfigFiles {
			if _, err := os.Stat(filepath.Join(cur, name)); err == nil {
				return cur, nil
			}
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root.
			return "", &domain.OpError{
				Op:   "projectfinder.findroot",
				Kind: domain.KindNotFound,
				Path: abs,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}
