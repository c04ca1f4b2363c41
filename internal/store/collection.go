package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/listfuse/internal/ir"
	"github.com/roach88/listfuse/internal/sqlgen"
)

// ErrPositionGap is returned when stored positions are not contiguous.
var ErrPositionGap = errors.New("collection positions are not contiguous")

// EnsureCollection creates the mapping's table and index if missing.
func (s *Store) EnsureCollection(ctx context.Context, mapping ir.CollectionMapping) error {
	for _, ddl := range sqlgen.NewCompiler(mapping).CreateTable() {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensure collection %s: %w", mapping.Name, err)
		}
	}
	return nil
}

// LoadCollection returns owner's elements in position order.
// Returns an empty slice (not nil) when the owner has no rows.
func (s *Store) LoadCollection(ctx context.Context, mapping ir.CollectionMapping, owner ir.IRValue) ([]ir.IRValue, error) {
	stmt, err := sqlgen.NewCompiler(mapping).SelectCollection(owner)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", mapping.Name, err)
	}

	rows, err := s.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", mapping.Name, err)
	}
	defer rows.Close()

	values := []ir.IRValue{}
	for rows.Next() {
		var pos int64
		var text string
		if err := rows.Scan(&pos, &text); err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		want := int64(mapping.StoredPosition(len(values)))
		if pos != want {
			return nil, fmt.Errorf("load collection %s: position %d, want %d: %w",
				mapping.Name, pos, want, ErrPositionGap)
		}
		v, err := ir.UnmarshalIRValue([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("decode element at %d: %w", pos, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elements: %w", err)
	}

	return values, nil
}

// Seed replaces owner's collection with values in one transaction.
func (s *Store) Seed(ctx context.Context, mapping ir.CollectionMapping, owner ir.IRValue, values []ir.IRValue) error {
	c := sqlgen.NewCompiler(mapping)
	ops := make([]sqlgen.Op, 0, len(values)+1)
	ops = append(ops, sqlgen.DeleteAll{})
	for i, v := range values {
		ops = append(ops, sqlgen.InsertRow{At: mapping.StoredPosition(i), Value: v})
	}

	stmts := make([]sqlgen.Statement, 0, len(ops))
	for _, op := range ops {
		stmt, err := c.CompileOp(op, owner)
		if err != nil {
			return fmt.Errorf("seed %s: %w", mapping.Name, err)
		}
		stmts = append(stmts, stmt)
	}

	if err := s.Apply(ctx, stmts, nil); err != nil {
		return fmt.Errorf("seed %s: %w", mapping.Name, err)
	}
	return nil
}

// Apply executes stmts in order inside one transaction. When rec is not
// nil its journal row is written in the same transaction and rec.ID is set.
func (s *Store) Apply(ctx context.Context, stmts []sqlgen.Statement, rec *ir.FlushRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			return fmt.Errorf("apply statement %d (%s): %w", i, stmt.Kind, err)
		}
	}

	if rec != nil {
		id, err := insertFlush(ctx, tx, *rec)
		if err != nil {
			return err
		}
		rec.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply: commit: %w", err)
	}
	return nil
}
