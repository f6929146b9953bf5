package sqlgen

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	_ "modernc.org/sqlite"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/dialect"
)

// DevDatabase is an ephemeral in-memory SQLite database that generated DDL
// is applied to, proving it is accepted by a real engine.
type DevDatabase struct {
	db *sql.DB
}

// NewDevDatabase opens a fresh in-memory database.
func NewDevDatabase() (*DevDatabase, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, alerr.WrapSQL(err, "create dev database", "")
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, alerr.WrapSQL(err, "ping dev database", "")
	}
	return &DevDatabase{db: db}, nil
}

// Close closes the dev database.
func (d *DevDatabase) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Apply executes stmts in one transaction.
func (d *DevDatabase) Apply(ctx context.Context, stmts []string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return alerr.WrapSQL(err, "begin transaction", "")
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return alerr.WrapSQL(err, "execute statement", stmt)
		}
	}
	if err := tx.Commit(); err != nil {
		return alerr.WrapSQL(err, "commit transaction", "")
	}
	return nil
}

// Columns returns the column names of table in declaration order.
func (d *DevDatabase) Columns(ctx context.Context, table string) ([]string, error) {
	// Returns: cid, name, type, notnull, dflt_value, pk
	query := fmt.Sprintf("PRAGMA table_info(%s)", dialect.SQLite().QuoteIdent(table))
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.WrapSQL(err, "introspect columns", query)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			cid        int
			name       string
			dataType   string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultVal, &pk); err != nil {
			return nil, alerr.WrapSQL(err, "scan column", query)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapSQL(err, "introspect columns", query)
	}
	return names, nil
}

// Verify applies the SQLite DDL of s to a dev database and checks that
// every table came out with exactly its fields, in order.
func Verify(ctx context.Context, s *ast.Structure, prefix string) error {
	stmts, err := Generate(s, Options{Dialect: "sqlite", Prefix: prefix})
	if err != nil {
		return err
	}

	dev, err := NewDevDatabase()
	if err != nil {
		return err
	}
	defer dev.Close()

	if err := dev.Apply(ctx, stmts); err != nil {
		return err
	}
	for _, t := range s.Tables {
		got, err := dev.Columns(ctx, prefix+t.Name)
		if err != nil {
			return err
		}
		if want := t.FieldNames(); !slices.Equal(got, want) {
			return alerr.Newf(alerr.ErrSQLExecution, "table has columns %v, want %v", got, want).
				WithTable(t.Name)
		}
	}
	return nil
}
