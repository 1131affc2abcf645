// Package config implements the repository and user-global configuration
// layers: a flat JSON record per repository, merged with a user-global
// fallback file via dario.cat/mergo so settings absent from the repository
// config fall back to the user's ~/.snowconfig.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"dario.cat/mergo"

	"github.com/go-git/go-billy/v5"

	"github.com/snowfs/snowfs/internal/atomicfs"
	"github.com/snowfs/snowfs/internal/snowerr"
)

// Config is the repository's config JSON record.
type Config struct {
	Version           int               `json:"version"`
	DefaultBranchName string            `json:"defaultBranchName,omitempty"`
	NoDefaultIgnore   bool              `json:"nodefaultignore,omitempty"`
	UserName          string            `json:"userName,omitempty"`
	UserEmail         string            `json:"userEmail,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

const currentVersion = 1

const configFileName = "config"

// Default returns the initial repository config written by InitExt: the
// current version and the default branch name ("Main" when empty).
func Default(defaultBranchName string) Config {
	if defaultBranchName == "" {
		defaultBranchName = "Main"
	}
	return Config{Version: currentVersion, DefaultBranchName: defaultBranchName}
}

// Load reads the repository config from fs (rooted at commondir).
func Load(fs billy.Filesystem) (Config, error) {
	f, err := fs.Open(configFileName)
	if err != nil {
		return Config{}, snowerr.Wrap(snowerr.NotFound, "config not found", err)
	}
	defer f.Close()

	var c Config
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return Config{}, snowerr.Wrap(snowerr.Corruption, "parsing config", err)
	}
	return c, nil
}

// Write atomic-writes cfg to fs's config file.
func Write(fs billy.Filesystem, cfg Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return snowerr.Wrap(snowerr.InternalIo, "serialising config", err)
	}
	return atomicfs.WriteSafe(fs, configFileName, data)
}

// UserGlobalPath returns the path to the user-global config file
// (~/.snowconfig), used as a fallback for settings not present in the
// repository config.
func UserGlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", snowerr.Wrap(snowerr.InternalIo, "resolving home directory", err)
	}
	return filepath.Join(home, ".snowconfig"), nil
}

// LoadUserGlobal reads ~/.snowconfig, returning a zero-value Config (not an
// error) when the file does not exist - a user-global file is optional.
func LoadUserGlobal() (Config, error) {
	path, err := UserGlobalPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, snowerr.Wrap(snowerr.InternalIo, "reading user config", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, snowerr.Wrap(snowerr.Corruption, "parsing user config", err)
	}
	return c, nil
}

// Layer merges global underneath local: mergo.Merge only fills a
// destination field when it is still at its zero value, so passing local
// as the destination and global as the source gives local fields priority
// and lets global fill whatever local left unset.
func Layer(local, global Config) (Config, error) {
	merged := local
	if err := mergo.Merge(&merged, global); err != nil {
		return Config{}, snowerr.Wrap(snowerr.InternalIo, "layering configuration", err)
	}
	return merged, nil
}
