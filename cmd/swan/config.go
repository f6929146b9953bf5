package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/cache"
	"github.com/hlop3z/swan/internal/component"
	"github.com/hlop3z/swan/internal/dialect"
	"github.com/hlop3z/swan/internal/patch"
	"github.com/hlop3z/swan/internal/sqlgen"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = "swan.yaml"

// Config represents the swan.yaml configuration file.
type Config struct {
	Component   string `yaml:"component"`
	PluginDir   string `yaml:"plugin_dir"`
	MoodleRoot  string `yaml:"moodle_root"`
	Entities    string `yaml:"entities"`
	Namespace   string `yaml:"namespace"`
	Output      string `yaml:"output"`
	Dialect     string `yaml:"dialect"`
	Prefix      string `yaml:"prefix"`
	CacheDir    string `yaml:"cache_dir"`
	DropMissing bool   `yaml:"drop_missing"`
}

var outputFormats = []string{"xml", "sql"}

func defaultConfig() *Config {
	return &Config{
		PluginDir: ".",
		Entities:  "classes/persistent",
		Output:    "xml",
		Dialect:   "postgres",
		Prefix:    sqlgen.DefaultPrefix,
		CacheDir:  cache.DefaultDir,
	}
}

// stringSettings maps each string setting to its field. Keys are flag names; the
// environment variable is SWAN_ plus the key upper-cased with '-' as '_'.
func (c *Config) stringSettings() map[string]*string {
	return map[string]*string{
		"component":   &c.Component,
		"plugin-dir":  &c.PluginDir,
		"moodle-root": &c.MoodleRoot,
		"entities":    &c.Entities,
		"namespace":   &c.Namespace,
		"output":      &c.Output,
		"dialect":     &c.Dialect,
		"prefix":      &c.Prefix,
		"cache-dir":   &c.CacheDir,
	}
}

func envName(key string) string {
	return "SWAN_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults.
// A missing file is only an error when its path was given explicitly.
func loadConfig(path string, explicit bool, flags *pflag.FlagSet) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.decode(data); err != nil {
			return nil, err.WithFile(path, 0)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "cannot read config file").WithFile(path, 0)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyFlags(flags); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// decode reads swan.yaml over the current values. Unknown keys are errors.
func (c *Config) decode(data []byte) *alerr.Error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return alerr.Wrap(alerr.ErrConfigInvalid, err, "invalid config file")
	}
	for _, p := range c.stringSettings() {
		*p = expandEnvVars(*p)
	}
	return nil
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

func (c *Config) applyEnv() error {
	for key, p := range c.stringSettings() {
		if v := os.Getenv(envName(key)); v != "" {
			*p = v
		}
	}
	if v := os.Getenv(envName("drop-missing")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return alerr.Wrap(alerr.ErrConfigInvalid, err, "invalid boolean").With("env", envName("drop-missing"))
		}
		c.DropMissing = b
	}
	return nil
}

// applyFlags copies the flags the user actually set.
func (c *Config) applyFlags(flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for key, p := range c.stringSettings() {
		if f := flags.Lookup(key); f != nil && f.Changed {
			*p = f.Value.String()
		}
	}
	if f := flags.Lookup("drop-missing"); f != nil && f.Changed {
		b, err := flags.GetBool("drop-missing")
		if err != nil {
			return alerr.Wrap(alerr.ErrConfigInvalid, err, "invalid --drop-missing")
		}
		c.DropMissing = b
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if !contains(outputFormats, c.Output) {
		return alerr.Newf(alerr.ErrConfigInvalid, "unknown output format %q", c.Output).
			WithHelp(alerr.SuggestSimilar(c.Output, outputFormats))
	}
	if dialect.Get(c.Dialect) == nil {
		return alerr.Newf(alerr.ErrConfigInvalid, "unknown dialect %q", c.Dialect).
			WithHelp(alerr.SuggestSimilar(c.Dialect, dialect.Names()))
	}
	if strings.TrimSpace(c.Entities) == "" {
		return alerr.New(alerr.ErrConfigInvalid, "entities directory is empty")
	}
	if c.CacheDir == "" {
		return alerr.New(alerr.ErrConfigInvalid, "cache directory is empty")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// project is a configuration resolved against the file system: absolute
// paths and a known component.
type project struct {
	cfg       *Config
	root      string // absolute plugin directory
	component string // frankenstyle name
	dir       string // plugin directory relative to the Moodle root
}

func (c *Config) resolve() (*project, error) {
	root, err := filepath.Abs(c.PluginDir)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "invalid plugin directory").With("plugin_dir", c.PluginDir)
	}
	p := &project{cfg: c, root: root, component: c.Component}

	if p.component == "" {
		if src, err := os.ReadFile(p.path("version.php")); err == nil {
			p.component = patch.ReadComponent(src)
		}
	}
	if p.component == "" && c.MoodleRoot != "" {
		moodleRoot, err := filepath.Abs(c.MoodleRoot)
		if err != nil {
			return nil, alerr.Wrap(alerr.ErrConfigInvalid, err, "invalid Moodle root").With("moodle_root", c.MoodleRoot)
		}
		p.component, p.dir, err = component.Infer(root, moodleRoot)
		if err != nil {
			return nil, err
		}
	}
	if p.component == "" {
		return nil, alerr.New(alerr.ErrConfigInvalid, "component is not set").
			With("plugin_dir", root).
			WithNote("version.php declares no $plugin->component").
			WithHelp("set 'component' in swan.yaml or pass --component")
	}
	if p.dir == "" {
		if p.dir, err = component.Dir(p.component); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// path joins parts below the plugin directory.
func (p *project) path(parts ...string) string {
	return filepath.Join(append([]string{p.root}, parts...)...)
}

// under resolves a configured path: absolute paths are kept, relative ones
// are taken from the plugin directory.
func (p *project) under(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return p.path(filepath.FromSlash(dir))
}

func (p *project) versionPHP() string  { return p.path("version.php") }
func (p *project) upgradePHP() string  { return p.path("db", "upgrade.php") }
func (p *project) installXML() string  { return p.path("db", "install.xml") }
func (p *project) entitiesDir() string { return p.under(p.cfg.Entities) }
func (p *project) cacheDir() string    { return p.under(p.cfg.CacheDir) }
