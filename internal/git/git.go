// Package git checks the working-tree state of the files swan patches.
package git

import (
	"bytes"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
)

// Status represents the git status of a file.
type Status int

const (
	StatusUnknown Status = iota
	StatusUntracked
	StatusModified
	StatusStaged
	StatusCommitted
	StatusDeleted
	StatusMissing // neither tracked nor present on disk
)

func (s Status) String() string {
	switch s {
	case StatusUntracked:
		return "untracked"
	case StatusModified:
		return "modified"
	case StatusStaged:
		return "staged"
	case StatusCommitted:
		return "committed"
	case StatusDeleted:
		return "deleted"
	case StatusMissing:
		return "missing"
	}
	return "unknown"
}

// Dirty reports whether the status carries changes that are not committed.
func (s Status) Dirty() bool {
	switch s {
	case StatusModified, StatusStaged, StatusDeleted:
		return true
	}
	return false
}

// FileStatus holds the status of a specific file.
type FileStatus struct {
	Path   string
	Status Status
}

// Repo provides git operations for a repository.
type Repo struct {
	rootDir string
}

// Open opens the git repository containing path.
func Open(path string) (*Repo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to resolve path").With("path", path)
	}

	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = absPath
	out, err := cmd.Output()
	if err != nil {
		return nil, alerr.New(alerr.ErrNotGitRepo, "not a git repository").With("path", absPath)
	}

	rootDir := strings.TrimSpace(string(out))
	if resolved, err := filepath.EvalSymlinks(rootDir); err == nil {
		rootDir = resolved
	}
	return &Repo{rootDir: rootDir}, nil
}

// RootDir returns the root directory of the repository.
func (r *Repo) RootDir() string {
	return r.rootDir
}

// IsTracked returns true if the file is tracked by git.
func (r *Repo) IsTracked(path string) (bool, error) {
	relPath, err := r.relativePath(path)
	if err != nil {
		return false, err
	}

	_, err = r.runGit("ls-files", "--error-unmatch", "--", relPath)
	return err == nil, nil
}

// FileStatus returns the status of a file.
func (r *Repo) FileStatus(path string) (Status, error) {
	relPath, err := r.relativePath(path)
	if err != nil {
		return StatusUnknown, err
	}

	status, err := r.runGit("status", "--porcelain", "--untracked-files=all", "--", relPath)
	if err != nil {
		return StatusUnknown, err
	}
	if line := strings.TrimRight(status, "\n"); line != "" {
		return parseStatus(line), nil
	}

	tracked, err := r.IsTracked(path)
	if err != nil {
		return StatusUnknown, err
	}
	if !tracked {
		return StatusMissing, nil
	}
	return StatusCommitted, nil
}

// parseStatus reads the XY code of a porcelain status line.
func parseStatus(line string) Status {
	if len(line) < 2 {
		return StatusUnknown
	}
	x, y := line[0], line[1]
	switch {
	case x == '?' || y == '?':
		return StatusUntracked
	case x == 'D' || y == 'D':
		return StatusDeleted
	case y == 'M':
		return StatusModified
	case x == 'M' || x == 'A' || x == 'R':
		return StatusStaged
	}
	return StatusModified
}

// DirtyFiles returns the statuses of paths that carry uncommitted changes.
// Untracked and missing files are not dirty: a new plugin has nothing
// committed yet.
func (r *Repo) DirtyFiles(paths ...string) ([]FileStatus, error) {
	var dirty []FileStatus
	for _, p := range paths {
		s, err := r.FileStatus(p)
		if err != nil {
			return nil, err
		}
		if s.Dirty() {
			dirty = append(dirty, FileStatus{Path: p, Status: s})
		}
	}
	return dirty, nil
}

// CheckClean returns an E3010 error when any of paths has uncommitted
// changes. Paths outside a git repository are not checked.
func CheckClean(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	repo, err := Open(filepath.Dir(paths[0]))
	if err != nil {
		if alerr.Is(err, alerr.ErrNotGitRepo) {
			return nil
		}
		return err
	}

	dirty, err := repo.DirtyFiles(paths...)
	if err != nil {
		return err
	}
	if len(dirty) == 0 {
		return nil
	}
	names := make([]string, len(dirty))
	for i, f := range dirty {
		names[i] = f.Path + " (" + f.Status.String() + ")"
	}
	return alerr.NewDirtyFilesError(names)
}

// relativePath returns the path relative to the repository root.
func (r *Repo) relativePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	// Resolve the directory so that symlinked temp dirs match rootDir.
	if dir, err := filepath.EvalSymlinks(filepath.Dir(absPath)); err == nil {
		absPath = filepath.Join(dir, filepath.Base(absPath))
	}

	relPath, err := filepath.Rel(r.rootDir, absPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relPath), nil
}

// runGit runs a git command and returns the output.
func (r *Repo) runGit(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.rootDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", alerr.New(alerr.ErrGitOperation, strings.TrimSpace(stderr.String())).
			With("command", "git "+strings.Join(args, " "))
	}
	return stdout.String(), nil
}
