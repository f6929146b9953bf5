// Package component resolves Moodle frankenstyle component names
// (local_example, mod_forum, core) to plugin types, names and directories.
package component

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
)

// Core is the plugin type of the core component and its subsystems.
const Core = "core"

// Subsystems of core. A component without an underscore names a subsystem
// when listed here and an activity module otherwise.
var Subsystems = []string{
	"access", "admin", "analytics", "antivirus", "auth", "availability", "backup",
	"badges", "block", "blog", "bulkusers", "cache", "calendar", "cohort", "comment",
	"competency", "completion", "countries", "course", "currencies", "customfield",
	"dbtransfer", "debug", "editor", "edufields", "enrol", "error", "filepicker",
	"files", "filters", "form", "grades", "grading", "group", "h5p", "help", "hub",
	"imports", "install", "iso6392", "langconfig", "license", "mathslib", "media",
	"message", "mimetypes", "mnet", "my", "notes", "pagetype", "payment", "pix",
	"plagiarism", "plugin", "portfolio", "privacy", "question", "rating",
	"repository", "rss", "role", "search", "table", "tag", "timezones", "user",
	"userkey", "webservice",
}

// pluginDirs maps plugin types to their directory below the Moodle root.
var pluginDirs = map[string]string{
	"antivirus":          "lib/antivirus",
	"assignfeedback":     "mod/assign/feedback",
	"assignsubmission":   "mod/assign/submission",
	"atto":               "lib/editor/atto/plugins",
	"auth":               "auth",
	"availability":       "availability/condition",
	"block":              "blocks",
	"booktool":           "mod/book/tool",
	"cachelock":          "cache/locks",
	"cachestore":         "cache/stores",
	"calendartype":       "calendar/type",
	"contenttype":        "contentbank/contenttype",
	"coursereport":       "course/report",
	"customfield":        "customfield/field",
	"datafield":          "mod/data/field",
	"dataformat":         "dataformat",
	"editor":             "lib/editor",
	"enrol":              "enrol",
	"fileconverter":      "files/converter",
	"filter":             "filter",
	"format":             "course/format",
	"gradeexport":        "grade/export",
	"gradeimport":        "grade/import",
	"gradereport":        "grade/report",
	"gradingform":        "grade/grading/form",
	"h5plib":             "h5p/h5plib",
	"local":              "local",
	"logstore":           "admin/tool/log/store",
	"ltisource":          "mod/lti/source",
	"media":              "media/player",
	"message":            "message/output",
	"mlbackend":          "lib/mlbackend",
	"mnetservice":        "mnet/service",
	"mod":                "mod",
	"paygw":              "payment/gateway",
	"plagiarism":         "plagiarism",
	"portfolio":          "portfolio",
	"profilefield":       "user/profile/field",
	"qbank":              "question/bank",
	"qbehaviour":         "question/behaviour",
	"qformat":            "question/format",
	"qtype":              "question/type",
	"quiz":               "mod/quiz/report",
	"quizaccess":         "mod/quiz/accessrule",
	"report":             "report",
	"repository":         "repository",
	"scormreport":        "mod/scorm/report",
	"search":             "search/engine",
	"theme":              "theme",
	"tinymce":            "lib/editor/tinymce/plugins",
	"tool":               "admin/tool",
	"webservice":         "webservice",
	"workshopallocation": "mod/workshop/allocation",
	"workshopeval":       "mod/workshop/eval",
	"workshopform":       "mod/workshop/form",
}

// Normalize splits a component into plugin type and name.
// "", "moodle" and "core" are the core component with an empty name.
func Normalize(component string) (typ, name string) {
	switch component {
	case "", "moodle", Core:
		return Core, ""
	}
	if !strings.Contains(component, "_") {
		if slices.Contains(Subsystems, component) {
			return Core, component
		}
		return "mod", component
	}
	typ, name, _ = strings.Cut(component, "_")
	if typ == "moodle" {
		typ = Core
	}
	return typ, name
}

// Frankenstyle joins a plugin type and name back into a component name.
func Frankenstyle(typ, name string) string {
	if name == "" {
		return typ
	}
	return typ + "_" + name
}

// PluginTypes returns the known plugin types in lexical order.
func PluginTypes() []string {
	types := make([]string, 0, len(pluginDirs))
	for t := range pluginDirs {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Dir returns the directory of a component relative to the Moodle root,
// using forward slashes: "local/example", "admin/tool/swan", "lib" for core.
func Dir(component string) (string, error) {
	typ, name := Normalize(component)
	if typ == Core {
		return "lib", nil
	}
	base, ok := pluginDirs[typ]
	if !ok {
		return "", alerr.Newf(alerr.ErrUnknownComponent, "unknown plugin type %q", typ).
			With("component", component).
			WithHelp(alerr.SuggestSimilar(typ, PluginTypes()))
	}
	if name == "" {
		return "", alerr.Newf(alerr.ErrUnknownComponent, "component %q has no plugin name", component)
	}
	return base + "/" + name, nil
}

// Infer returns the component whose directory contains cwd, together with
// that directory relative to root. The deepest matching plugin directory
// wins, so a log store inside admin/tool/log resolves to logstore_*, not tool_log.
func Infer(cwd, root string) (component, dir string, err error) {
	rel, err := filepath.Rel(root, cwd)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", "", alerr.New(alerr.ErrUnknownComponent, "working directory is not inside the Moodle root").
			With("cwd", cwd).
			With("root", root).
			WithHelp("pass --component=<frankenstyle_name>")
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	best := 0
	for typ, base := range pluginDirs {
		prefix := strings.Split(base, "/")
		if len(parts) <= len(prefix) || !slices.Equal(parts[:len(prefix)], prefix) {
			continue
		}
		depth := len(prefix) + 1
		if depth > best {
			best = depth
			component = Frankenstyle(typ, parts[len(prefix)])
			dir = strings.Join(parts[:depth], "/")
		}
	}
	if best == 0 {
		return "", "", alerr.New(alerr.ErrUnknownComponent, "no plugin directory contains the working directory").
			With("cwd", cwd).
			WithHelp("pass --component=<frankenstyle_name>")
	}
	return component, dir, nil
}
