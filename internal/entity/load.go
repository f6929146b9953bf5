package entity

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hlop3z/swan/internal/alerr"
)

// Extensions recognised as entity definition files.
var Extensions = []string{".yaml", ".yml", ".js"}

// IsEntityFile reports whether path has an entity file extension.
func IsEntityFile(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Parse decodes entity source according to the extension of source.
func Parse(data []byte, source string) (*Entity, error) {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".js":
		return ParseJS(data, source)
	case ".yaml", ".yml":
		return ParseYAML(data, source)
	}
	return nil, alerr.New(alerr.ErrParse, "unsupported entity file extension").
		WithFile(source, 0).
		WithHelp("use .yaml, .yml or .js")
}

// LoadFile reads and decodes one entity file.
func LoadFile(path string) (*Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.WrapLoad(err, path)
	}
	return Parse(data, path)
}

// LoadFiles decodes files concurrently. The result keeps the order of paths;
// the first failure cancels the remaining work.
func LoadFiles(ctx context.Context, paths []string) ([]*Entity, error) {
	out := make([]*Entity, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := LoadFile(p)
			if err != nil {
				return err
			}
			out[i] = e
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindFiles returns the entity files below dir in lexical order.
// A missing directory yields no files.
func FindFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if IsEntityFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, alerr.WrapLoad(err, dir)
	}
	slices.Sort(paths)
	return paths, nil
}

// LoadDir loads every entity file below dir.
func LoadDir(ctx context.Context, dir string) ([]*Entity, error) {
	paths, err := FindFiles(dir)
	if err != nil {
		return nil, err
	}
	return LoadFiles(ctx, paths)
}

// ShortName returns the last segment of a fully-qualified entity name.
func (e *Entity) ShortName() string {
	if i := strings.LastIndex(e.Name, `\`); i >= 0 {
		return e.Name[i+1:]
	}
	return e.Name
}

// Select returns the entities matching names, in the order of names.
// A name matches the fully-qualified entity name or its last segment.
func Select(entities []*Entity, names []string) ([]*Entity, error) {
	var out []*Entity
	for _, name := range names {
		name = strings.Trim(name, `\`)
		found := false
		for _, e := range entities {
			if e.Name == name || e.ShortName() == name {
				out = append(out, e)
				found = true
				break
			}
		}
		if !found {
			known := make([]string, len(entities))
			for i, e := range entities {
				known[i] = e.ShortName()
			}
			return nil, alerr.Newf(alerr.ErrInvalidEntity, "unknown entity %q", name).
				WithHelp(alerr.SuggestSimilar(name, known))
		}
	}
	return out, nil
}
