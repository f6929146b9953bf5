package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/testutil"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "swan.yaml"), false, nil)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if *cfg != *defaultConfig() {
		t.Errorf("config = %+v, want defaults", *cfg)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swan.yaml")
	testutil.WriteFile(t, path, `component: local_example
entities: ${ENTITY_ROOT}/persistent
dialect: sqlite
prefix: file_
drop_missing: true
`)
	t.Setenv("ENTITY_ROOT", "classes")
	t.Setenv("SWAN_PREFIX", "env_")
	t.Setenv("SWAN_DROP_MISSING", "false")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("dialect", "postgres", "")
	flags.String("prefix", "mdl_", "")
	if err := flags.Parse([]string{"--dialect=postgres"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, true, flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	tests := []struct {
		name, got, want string
	}{
		{"component from file", cfg.Component, "local_example"},
		{"expanded entities", cfg.Entities, "classes/persistent"},
		{"flag over file", cfg.Dialect, "postgres"},
		{"env over file, unset flag ignored", cfg.Prefix, "env_"},
		{"default kept", cfg.CacheDir, ".swan"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if cfg.DropMissing {
		t.Error("SWAN_DROP_MISSING=false should override the file")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		env     string
	}{
		{"unknown key", "entites: x\n", ""},
		{"malformed", "component: [\n", ""},
		{"bad output", "output: json\n", ""},
		{"bad dialect", "dialect: mysql\n", ""},
		{"bad env bool", "", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			testutil.WriteFile(t, path, tt.content)
			if tt.env != "" {
				t.Setenv("SWAN_DROP_MISSING", tt.env)
			}
			if _, err := loadConfig(path, true, nil); !alerr.Is(err, alerr.ErrConfigInvalid) {
				t.Errorf("loadConfig() error = %v, want E4001", err)
			}
		})
	}

	t.Run("explicit missing file", func(t *testing.T) {
		if _, err := loadConfig(filepath.Join(dir, "none.yaml"), true, nil); !alerr.Is(err, alerr.ErrConfigInvalid) {
			t.Errorf("loadConfig() error = %v, want E4001", err)
		}
	})
}

func TestResolve(t *testing.T) {
	p := testutil.NewPlugin(t, "block_html", 2024010100)

	cfg := defaultConfig()
	cfg.PluginDir = p.Dir
	cfg.CacheDir = filepath.Join(p.Dir, "cache")
	proj, err := cfg.resolve()
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if proj.component != "block_html" || proj.dir != "blocks/html" {
		t.Errorf("component = %q, dir = %q", proj.component, proj.dir)
	}
	if got := proj.entitiesDir(); got != p.Path("classes", "persistent") {
		t.Errorf("entitiesDir() = %q", got)
	}
	if got := proj.cacheDir(); got != cfg.CacheDir {
		t.Errorf("absolute cache dir changed to %q", got)
	}
}

func TestResolveInfersComponent(t *testing.T) {
	root := t.TempDir()
	plugin := filepath.Join(root, "local", "example")
	testutil.WriteFile(t, filepath.Join(plugin, "version.php"), "<?php\n$plugin->version = 2024010100;\n")

	cfg := defaultConfig()
	cfg.PluginDir = plugin
	cfg.MoodleRoot = root
	proj, err := cfg.resolve()
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if proj.component != "local_example" || proj.dir != "local/example" {
		t.Errorf("component = %q, dir = %q", proj.component, proj.dir)
	}
}

func TestResolveErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.PluginDir = t.TempDir()
	if _, err := cfg.resolve(); !alerr.Is(err, alerr.ErrConfigInvalid) {
		t.Errorf("no component: error = %v, want E4001", err)
	}

	cfg.Component = "locl_example"
	if _, err := cfg.resolve(); !alerr.Is(err, alerr.ErrUnknownComponent) {
		t.Errorf("bad component: error = %v, want E4002", err)
	}
}
