package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/derive"
	"github.com/hlop3z/swan/internal/engine"
	"github.com/hlop3z/swan/internal/entity"
	"github.com/hlop3z/swan/internal/patch"
	"github.com/hlop3z/swan/internal/xmlfile"
)

// now is replaced in tests.
var now = time.Now

// loadEntities reads every entity file of the project.
func (p *project) loadEntities(ctx context.Context) ([]*entity.Entity, error) {
	entities, err := entity.LoadDir(ctx, p.entitiesDir())
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		slog.Debug("loaded entity", "name", e.Name, "table", e.Table, "file", e.Source)
	}
	return entities, nil
}

// derive derives the structure of the project at the given version.
func (p *project) derive(entities []*entity.Entity, version int64) (*ast.Structure, error) {
	return derive.DeriveStructure(derive.StructureOptions{
		Component: p.component,
		Dir:       p.dir,
		Version:   version,
		Namespace: p.cfg.Namespace,
	}, entities)
}

// change is one computed upgrade step together with everything it was
// computed from.
type change struct {
	from    int64 // version in version.php
	stored  *ast.Structure
	derived *ast.Structure
	opts    engine.DiffOptions
	plan    *engine.Plan
}

// result is the structure install.xml holds once the step is applied.
func (c *change) result() *ast.Structure {
	return engine.Merge(c.derived, c.stored, c.opts)
}

// computeChange derives the entities and diffs them against install.xml.
// Names narrow the diff to the tables of those entities.
func (p *project) computeChange(ctx context.Context, names []string) (*change, error) {
	from, err := patch.ReadVersionFile(p.versionPHP())
	if err != nil {
		return nil, err
	}
	to := engine.NextVersion(from, now())

	entities, err := p.loadEntities(ctx)
	if err != nil {
		return nil, err
	}

	opts := engine.DiffOptions{DropMissing: p.cfg.DropMissing}
	if len(names) > 0 {
		selected, err := entity.Select(entities, names)
		if err != nil {
			return nil, err
		}
		for _, e := range selected {
			opts.Tables = append(opts.Tables, e.Table)
		}
	}

	derived, err := p.derive(entities, to)
	if err != nil {
		return nil, err
	}
	stored, err := xmlfile.LoadOrEmpty(p.installXML())
	if err != nil {
		return nil, err
	}

	plan := engine.NewPlan(p.component, to)
	if err := plan.Diff(derived, stored, opts); err != nil {
		return nil, err
	}
	slog.Debug("computed plan", "from", from, "to", to, "operations", len(plan.Operations()))
	return &change{from: from, stored: stored, derived: derived, opts: opts, plan: plan}, nil
}
