package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/souvikmukherjee/util-bian-modelling/internal/domain"
)

// FileNames are the config files looked up in a project root, in order.
var FileNames = []string{"bianx.yaml", "bianx.yml", "bianx.toml"}

// Load reads settings from path (yaml or toml, by extension) on top of the defaults,
// then applies environment overrides. An empty path yields defaults plus env.
func Load(path string) (domain.Settings, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

func LoadWithEnv(path string, lookup func(string) (string, bool)) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if strings.TrimSpace(path) != "" {
		fc, err := readFile(path)
		if err != nil {
			return domain.Settings{}, err
		}
		s, err = Apply(path, s, fc)
		if err != nil {
			return domain.Settings{}, err
		}
	}
	return ApplyEnv(s, lookup), nil
}

// Find returns the first config file present in root, or "" when there is none.
func Find(root string) string {
	for _, name := range FileNames {
		p := filepath.Join(root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func readFile(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var doc fileDoc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(b, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &doc)
	default:
		return FileConfig{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  domain.ErrInvalidConfig,
		}
	}
	if err != nil {
		return FileConfig{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return doc.Bianx, nil
}
