package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/hlop3z/swan/internal/alerr"
)

// -----------------------------------------------------------------------------
// Test Helpers
// -----------------------------------------------------------------------------

// initGitRepo initializes a new git repository in the given directory.
func initGitRepo(t *testing.T, dir string) {
	t.Helper()
	runGitCmd(t, dir, "init")
	runGitCmd(t, dir, "config", "user.email", "test@test.com")
	runGitCmd(t, dir, "config", "user.name", "Test User")
}

// runGitCmd runs a git command in the given directory.
func runGitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return string(out)
}

// createFile creates a file with the given content.
func createFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create file %s: %v", path, err)
	}
}

// -----------------------------------------------------------------------------
// Open Tests
// -----------------------------------------------------------------------------

func TestOpen(t *testing.T) {
	t.Run("valid_git_repo", func(t *testing.T) {
		dir := t.TempDir()
		initGitRepo(t, dir)

		repo, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if repo == nil {
			t.Fatal("Open() returned nil repo")
		}
		if repo.RootDir() == "" {
			t.Error("RootDir() returned empty string")
		}
	})

	t.Run("subdirectory_of_git_repo", func(t *testing.T) {
		dir := t.TempDir()
		initGitRepo(t, dir)

		subdir := filepath.Join(dir, "subdir")
		if err := os.MkdirAll(subdir, 0755); err != nil {
			t.Fatalf("failed to create subdir: %v", err)
		}

		repo, err := Open(subdir)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if repo == nil {
			t.Fatal("Open() returned nil repo")
		}
	})

	t.Run("non_git_directory", func(t *testing.T) {
		dir := t.TempDir()

		_, err := Open(dir)
		if err == nil {
			t.Fatal("Open() expected error for non-git directory")
		}

		code := alerr.GetErrorCode(err)
		if code != alerr.ErrNotGitRepo {
			t.Errorf("Open() error code = %v, want %v", code, alerr.ErrNotGitRepo)
		}
	})

	t.Run("nonexistent_directory", func(t *testing.T) {
		_, err := Open("/nonexistent/path/that/does/not/exist")
		if err == nil {
			t.Fatal("Open() expected error for nonexistent directory")
		}
	})
}

// -----------------------------------------------------------------------------
// IsTracked Tests
// -----------------------------------------------------------------------------

func TestIsTracked(t *testing.T) {
	dir := t.TempDir()
	initGitRepo(t, dir)

	// Create and commit a tracked file
	trackedFile := filepath.Join(dir, "tracked.txt")
	createFile(t, trackedFile, "tracked content")
	runGitCmd(t, dir, "add", "tracked.txt")
	runGitCmd(t, dir, "commit", "-m", "Add tracked file")

	// Create an untracked file
	untrackedFile := filepath.Join(dir, "untracked.txt")
	createFile(t, untrackedFile, "untracked content")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"tracked_file", trackedFile, true},
		{"untracked_file", untrackedFile, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracked, err := repo.IsTracked(tt.path)
			if err != nil {
				t.Fatalf("IsTracked() error = %v", err)
			}
			if tracked != tt.expected {
				t.Errorf("IsTracked() = %v, want %v", tracked, tt.expected)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// FileStatus Tests
// -----------------------------------------------------------------------------

func TestFileStatus(t *testing.T) {
	t.Run("committed_file", func(t *testing.T) {
		dir := t.TempDir()
		initGitRepo(t, dir)

		// Create and commit a file
		committedFile := filepath.Join(dir, "committed.txt")
		createFile(t, committedFile, "committed content")
		runGitCmd(t, dir, "add", "committed.txt")
		runGitCmd(t, dir, "commit", "-m", "Add committed file")

		repo, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		status, err := repo.FileStatus(committedFile)
		if err != nil {
			t.Fatalf("FileStatus() error = %v", err)
		}
		if status != StatusCommitted {
			t.Errorf("FileStatus() = %v, want %v", status, StatusCommitted)
		}
	})

	t.Run("untracked_file", func(t *testing.T) {
		dir := t.TempDir()
		initGitRepo(t, dir)

		// Create initial commit
		createFile(t, filepath.Join(dir, "README.md"), "# Test")
		runGitCmd(t, dir, "add", "README.md")
		runGitCmd(t, dir, "commit", "-m", "Initial commit")

		// Create an untracked file
		untrackedFile := filepath.Join(dir, "untracked.txt")
		createFile(t, untrackedFile, "untracked content")

		repo, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		status, err := repo.FileStatus(untrackedFile)
		if err != nil {
			t.Fatalf("FileStatus() error = %v", err)
		}
		if status != StatusUntracked {
			t.Errorf("FileStatus() = %v, want %v", status, StatusUntracked)
		}
	})

	t.Run("modified_file", func(t *testing.T) {
		dir := t.TempDir()
		initGitRepo(t, dir)

		// Create and commit a file
		modifiedFile := filepath.Join(dir, "modified.txt")
		createFile(t, modifiedFile, "original content")
		runGitCmd(t, dir, "add", "modified.txt")
		runGitCmd(t, dir, "commit", "-m", "Add file")

		// Modify the file (unstaged changes)
		createFile(t, modifiedFile, "modified content")

		repo, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		status, err := repo.FileStatus(modifiedFile)
		if err != nil {
			t.Fatalf("FileStatus() error = %v", err)
		}
		// A modified file can be StatusModified or StatusStaged depending on git autocrlf settings
		if status != StatusModified && status != StatusStaged {
			t.Errorf("FileStatus() = %v, want StatusModified or StatusStaged", status)
		}
	})

	t.Run("staged_file", func(t *testing.T) {
		dir := t.TempDir()
		initGitRepo(t, dir)

		// Create initial commit
		createFile(t, filepath.Join(dir, "README.md"), "# Test")
		runGitCmd(t, dir, "add", "README.md")
		runGitCmd(t, dir, "commit", "-m", "Initial commit")

		// Create a staged file
		stagedFile := filepath.Join(dir, "staged.txt")
		createFile(t, stagedFile, "staged content")
		runGitCmd(t, dir, "add", "staged.txt")

		repo, err := Open(dir)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}

		status, err := repo.FileStatus(stagedFile)
		if err != nil {
			t.Fatalf("FileStatus() error = %v", err)
		}
		if status != StatusStaged {
			t.Errorf("FileStatus() = %v, want %v", status, StatusStaged)
		}
	})
}

// -----------------------------------------------------------------------------
// Dirty File Tests
// -----------------------------------------------------------------------------

// pluginRepo creates a repository holding a committed plugin db directory.
func pluginRepo(t *testing.T) (dir string, upgrade, version, install string) {
	t.Helper()
	dir = t.TempDir()
	initGitRepo(t, dir)

	upgrade = filepath.Join(dir, "db", "upgrade.php")
	install = filepath.Join(dir, "db", "install.xml")
	version = filepath.Join(dir, "version.php")
	createFile(t, upgrade, "<?php\n")
	createFile(t, install, "<?xml version=\"1.0\" encoding=\"UTF-8\" ?>\n")
	createFile(t, version, "<?php\n$plugin->version = 2024010100;\n")
	runGitCmd(t, dir, "add", ".")
	runGitCmd(t, dir, "commit", "-m", "Initial commit")
	return dir, upgrade, version, install
}

func TestDirtyFiles(t *testing.T) {
	dir, upgrade, version, install := pluginRepo(t)
	createFile(t, version, "<?php\n$plugin->version = 2024010200;\n")
	missing := filepath.Join(dir, "db", "access.php")

	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	dirty, err := repo.DirtyFiles(upgrade, version, install, missing)
	if err != nil {
		t.Fatalf("DirtyFiles() error = %v", err)
	}
	if len(dirty) != 1 || dirty[0].Path != version || dirty[0].Status != StatusModified {
		t.Errorf("DirtyFiles() = %+v, want only version.php modified", dirty)
	}

	status, err := repo.FileStatus(missing)
	if err != nil {
		t.Fatalf("FileStatus() error = %v", err)
	}
	if status != StatusMissing {
		t.Errorf("FileStatus(missing) = %v, want %v", status, StatusMissing)
	}
}

func TestCheckClean(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		_, upgrade, version, install := pluginRepo(t)
		if err := CheckClean(upgrade, version, install); err != nil {
			t.Errorf("CheckClean() error = %v", err)
		}
	})

	t.Run("dirty", func(t *testing.T) {
		dir, upgrade, version, install := pluginRepo(t)
		createFile(t, upgrade, "<?php\n// local edit\n")
		runGitCmd(t, dir, "add", "db/upgrade.php")

		err := CheckClean(upgrade, version, install)
		if !alerr.Is(err, alerr.ErrDirtyFiles) {
			t.Fatalf("CheckClean() error = %v, want E3010", err)
		}
	})

	t.Run("not_a_repository", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "version.php")
		createFile(t, path, "<?php\n")
		if err := CheckClean(path); err != nil {
			t.Errorf("CheckClean() error = %v, want nil outside a repository", err)
		}
	})

	t.Run("no_paths", func(t *testing.T) {
		if err := CheckClean(); err != nil {
			t.Errorf("CheckClean() error = %v", err)
		}
	})
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		line string
		want Status
	}{
		{"?? new.php", StatusUntracked},
		{" M version.php", StatusModified},
		{"MM version.php", StatusModified},
		{"M  version.php", StatusStaged},
		{"A  db/install.xml", StatusStaged},
		{" D db/upgrade.php", StatusDeleted},
		{"D  db/upgrade.php", StatusDeleted},
		{"R  old.php -> new.php", StatusStaged},
		{"x", StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := parseStatus(tt.line); got != tt.want {
				t.Errorf("parseStatus(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestStatusDirty(t *testing.T) {
	for s := StatusUnknown; s <= StatusMissing; s++ {
		want := s == StatusModified || s == StatusStaged || s == StatusDeleted
		if s.Dirty() != want {
			t.Errorf("%v.Dirty() = %v, want %v", s, s.Dirty(), want)
		}
	}
}
