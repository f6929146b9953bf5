// Package lockfile records SHA-256 checksums of the entity files a migrate
// run derived from, so later commands can tell which entities changed since.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/entity"
)

// FileName is the lock file name inside the cache directory.
const FileName = "entities.lock"

// Entry represents a single file entry in the lock file.
type Entry struct {
	Filename string // slash-separated, relative to the entities directory
	Checksum string
}

// LockFile represents the parsed contents of a lock file.
type LockFile struct {
	Aggregate string  // SHA-256 of all individual checksums combined
	Entries   []Entry // Individual file checksums
}

// Path returns the lock file path inside cacheDir.
func Path(cacheDir string) string {
	return filepath.Join(cacheDir, FileName)
}

// Read reads and parses a lock file from the given path.
// Returns nil if the file does not exist.
func Read(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, alerr.WrapLoad(err, path)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] == "" {
		return nil, alerr.New(alerr.ErrParse, "lock file is empty").WithFile(path, 0)
	}

	lf := &LockFile{Aggregate: strings.TrimSpace(lines[0])}
	for i, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sum, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, alerr.New(alerr.ErrParse, "malformed lock file entry").WithFile(path, i+2)
		}
		lf.Entries = append(lf.Entries, Entry{
			Filename: strings.TrimSpace(name),
			Checksum: sum,
		})
	}
	return lf, nil
}

// Write computes checksums for every entity file below entitiesDir and
// writes them to lockPath.
func Write(entitiesDir, lockPath string) error {
	entries, err := computeEntries(entitiesDir)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(computeAggregate(entries) + "\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s %s\n", e.Checksum, e.Filename)
	}

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return alerr.WrapWrite(err, filepath.Dir(lockPath))
	}
	if err := os.WriteFile(lockPath, []byte(sb.String()), 0644); err != nil {
		return alerr.WrapWrite(err, lockPath)
	}
	return nil
}

// VerificationResult holds detailed results of lock file verification.
type VerificationResult struct {
	Valid          bool     // Overall validity
	LockFileExists bool     // Whether lock file exists
	AggregateMatch bool     // Whether aggregate checksum matches
	NewFiles       []string // Files on disk but not in lock
	RemovedFiles   []string // Files in lock but not on disk
	ModifiedFiles  []string // Files with checksum mismatches
	VerifiedFiles  []string // Files that passed verification
}

// Changed returns every new, removed or modified file.
func (r *VerificationResult) Changed() []string {
	var out []string
	out = append(out, r.NewFiles...)
	out = append(out, r.ModifiedFiles...)
	return append(out, r.RemovedFiles...)
}

// Verify compares the lock file with the entity files on disk.
func Verify(entitiesDir, lockPath string) (*VerificationResult, error) {
	result := &VerificationResult{
		Valid:          true,
		LockFileExists: true,
		AggregateMatch: true,
	}

	lf, err := Read(lockPath)
	if err != nil {
		return nil, err
	}
	if lf == nil {
		result.LockFileExists = false
		result.Valid = false
		return result, nil
	}

	entries, err := computeEntries(entitiesDir)
	if err != nil {
		return nil, err
	}

	if computeAggregate(entries) != lf.Aggregate {
		result.AggregateMatch = false
		result.Valid = false
	}

	lockMap := make(map[string]string, len(lf.Entries))
	for _, e := range lf.Entries {
		lockMap[e.Filename] = e.Checksum
	}

	fileMap := make(map[string]bool, len(entries))
	for _, e := range entries {
		fileMap[e.Filename] = true

		expected, ok := lockMap[e.Filename]
		switch {
		case !ok:
			result.NewFiles = append(result.NewFiles, e.Filename)
			result.Valid = false
		case expected != e.Checksum:
			result.ModifiedFiles = append(result.ModifiedFiles, e.Filename)
			result.Valid = false
		default:
			result.VerifiedFiles = append(result.VerifiedFiles, e.Filename)
		}
	}

	for _, e := range lf.Entries {
		if !fileMap[e.Filename] {
			result.RemovedFiles = append(result.RemovedFiles, e.Filename)
			result.Valid = false
		}
	}
	return result, nil
}

// computeEntries checksums the entity files below dir, in lexical order.
func computeEntries(dir string) ([]Entry, error) {
	paths, err := entity.FindFiles(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, alerr.WrapLoad(err, p)
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil, alerr.WrapLoad(err, p)
		}
		sum := sha256.Sum256(data)
		entries = append(entries, Entry{
			Filename: filepath.ToSlash(rel),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}
	return entries, nil
}

// computeAggregate computes the aggregate SHA-256 from all individual checksums.
func computeAggregate(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.Filename))
		h.Write([]byte(e.Checksum))
	}
	return hex.EncodeToString(h.Sum(nil))
}
