package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
)

// EntitiesDir is where NewPlugin places entity files, relative to the plugin.
const EntitiesDir = "classes/persistent"

// Plugin is a temporary Moodle plugin directory.
type Plugin struct {
	Dir       string
	Component string
}

// NewPlugin creates a plugin with version.php and an empty db/upgrade.php.
func NewPlugin(t *testing.T, component string, version int64) *Plugin {
	t.Helper()

	p := &Plugin{Dir: t.TempDir(), Component: component}
	WriteFile(t, p.Path("version.php"), VersionPHP(component, version))
	WriteFile(t, p.Path("db", "upgrade.php"), UpgradePHP(component))
	return p
}

// Path joins parts below the plugin directory.
func (p *Plugin) Path(parts ...string) string {
	return filepath.Join(append([]string{p.Dir}, parts...)...)
}

// WriteEntity writes an entity file below the entities directory.
func (p *Plugin) WriteEntity(t *testing.T, name, content string) string {
	t.Helper()

	path := p.Path(filepath.FromSlash(EntitiesDir), name)
	WriteFile(t, path, content)
	return path
}

// VersionPHP renders a minimal version.php.
func VersionPHP(component string, version int64) string {
	return fmt.Sprintf(`<?php
defined('MOODLE_INTERNAL') || die();

$plugin->component = '%s';
$plugin->version = %d;
$plugin->requires = 2022041900;
`, component, version)
}

// UpgradePHP renders an upgrade.php with no upgrade steps.
func UpgradePHP(component string) string {
	return fmt.Sprintf(`<?php
defined('MOODLE_INTERNAL') || die();

function xmldb_%s_upgrade($oldversion) {
    global $DB;

    $dbman = $DB->get_manager();

    return true;
}
`, component)
}
