// Package patch edits the PHP files of a plugin in place: it splices an
// upgrade step into db/upgrade.php and bumps $plugin->version in version.php.
//
// Edits are prepared in memory first and written together by WriteAll, so a
// failing edit leaves every file untouched.
package patch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/hlop3z/swan/internal/alerr"
)

// ReturnLine is the line an upgrade function must end with. Upgrade steps
// are inserted immediately before it.
const ReturnLine = "    return true;\n"

// Assignments count only at the start of a line, so commented-out lines
// ("// $plugin->version = ...") are ignored.
var (
	versionPattern   = regexp.MustCompile(`(?m)^[ \t]*\$(?:plugin|module)->version\s*=\s*(\d+)`)
	componentPattern = regexp.MustCompile(`(?m)^[ \t]*\$(?:plugin|module)->component\s*=\s*['"]([a-z][a-z0-9_]*)['"]`)
)

// ReadVersion returns the version declared in a version.php file.
func ReadVersion(src []byte) (int64, error) {
	m := versionPattern.FindSubmatch(src)
	if m == nil {
		return 0, alerr.New(alerr.ErrPatchFormat, "no $plugin->version assignment found").
			WithHelp("version.php must contain a line like '$plugin->version = 2024010100;'")
	}
	v, err := strconv.ParseInt(string(m[1]), 10, 64)
	if err != nil {
		return 0, alerr.Wrap(alerr.ErrPatchFormat, err, "version number out of range")
	}
	return v, nil
}

// ReadComponent returns the frankenstyle name declared in a version.php
// file, or "" when it declares none.
func ReadComponent(src []byte) string {
	if m := componentPattern.FindSubmatch(src); m != nil {
		return string(m[1])
	}
	return ""
}

// ReplaceVersion rewrites every "$plugin->version = old" assignment to new.
// $module->version is accepted as ReadVersion accepts it. Whitespace around
// the assignment is preserved.
func ReplaceVersion(src []byte, old, new int64) ([]byte, error) {
	re := regexp.MustCompile(`(?m)^([ \t]*\$(?:plugin|module)->version\s*=\s*)(` + strconv.FormatInt(old, 10) + `)\b`)
	if !re.Match(src) {
		return nil, alerr.Newf(alerr.ErrPatchFormat, "no $plugin->version = %d assignment found", old)
	}
	return re.ReplaceAll(src, []byte("${1}"+strconv.FormatInt(new, 10))), nil
}

// SpliceUpgrade inserts fragment before the last "    return true;" line
// of src. The return line must be followed only by the closing brace of the
// upgrade function and trailing whitespace.
func SpliceUpgrade(src []byte, fragment string) ([]byte, error) {
	i := bytes.LastIndex(src, []byte(ReturnLine))
	if i < 0 || (i > 0 && src[i-1] != '\n') {
		return nil, alerr.New(alerr.ErrPatchFormat, "upgrade.php is not in the expected format").
			WithNote(fmt.Sprintf("the upgrade function must end with %q", ReturnLine)).
			WithHelp("restore the final 'return true;' of the upgrade function")
	}
	if rest := bytes.TrimSpace(src[i+len(ReturnLine):]); !bytes.HasPrefix(rest, []byte("}")) {
		return nil, alerr.New(alerr.ErrPatchFormat, "upgrade.php is not in the expected format").
			WithNote("'return true;' must be the last statement of the upgrade function")
	}

	out := make([]byte, 0, len(src)+len(fragment))
	out = append(out, src[:i]...)
	out = append(out, fragment...)
	out = append(out, src[i:]...)
	return out, nil
}

// -----------------------------------------------------------------------------
// Pending writes
// -----------------------------------------------------------------------------

// Pending is the new content of a file that has not been written yet.
type Pending struct {
	Path string
	Data []byte
	mode os.FileMode
}

// Prepare reads the file at path and applies edit in memory. Errors from
// edit carry the file location.
func Prepare(path string, edit func([]byte) ([]byte, error)) (*Pending, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, alerr.WrapLoad(err, path)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.WrapLoad(err, path)
	}
	out, err := edit(src)
	if err != nil {
		if ae, ok := err.(*alerr.Error); ok {
			ae.WithFile(path, 0)
		}
		return nil, err
	}
	return &Pending{Path: path, Data: out, mode: info.Mode().Perm()}, nil
}

// Contents returns a pending write of data to path. An existing file keeps
// its mode; a new one gets 0644.
func Contents(path string, data []byte) *Pending {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return &Pending{Path: path, Data: data, mode: mode}
}

// WriteAll writes files. Every file is first written to a temporary file
// next to it; the temporaries are renamed into place only when all of them
// were written.
func WriteAll(files ...*Pending) error {
	temps := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}

	for _, f := range files {
		tmp, err := writeTemp(f)
		if err != nil {
			cleanup()
			return err
		}
		temps = append(temps, tmp)
	}
	for i, f := range files {
		if err := os.Rename(temps[i], f.Path); err != nil {
			cleanup()
			return alerr.WrapWrite(err, f.Path)
		}
	}
	return nil
}

func writeTemp(f *Pending) (string, error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", alerr.WrapWrite(err, f.Path)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return "", alerr.WrapWrite(err, f.Path)
	}
	_, werr := tmp.Write(f.Data)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Chmod(tmp.Name(), f.mode)
	}
	if werr != nil {
		os.Remove(tmp.Name())
		return "", alerr.WrapWrite(werr, f.Path)
	}
	return tmp.Name(), nil
}

// ReadVersionFile reads the version declared in the version.php at path.
func ReadVersionFile(path string) (int64, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, alerr.WrapLoad(err, path)
	}
	v, err := ReadVersion(src)
	if err != nil {
		return 0, err.(*alerr.Error).WithFile(path, 0)
	}
	return v, nil
}
