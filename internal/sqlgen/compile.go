package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/ir"
)

// Statement is one parameterized SQL statement.
type Statement struct {
	SQL  string
	Args []any
	Kind string
}

// Compiler emits SQL for one collection mapping.
//
// All values are parameterized (never interpolated). Identifiers come from
// a validated mapping and are double-quoted.
type Compiler struct {
	mapping ir.CollectionMapping
}

// NewCompiler creates a compiler for mapping.
func NewCompiler(mapping ir.CollectionMapping) *Compiler {
	return &Compiler{mapping: mapping}
}

// Compile lowers plan and compiles every op for owner.
func Compile(plan *fusion.Plan, mapping ir.CollectionMapping, owner ir.IRValue) ([]Statement, error) {
	if plan == nil {
		return nil, fmt.Errorf("cannot compile nil plan")
	}
	c := NewCompiler(mapping)
	ops := Lower(plan, mapping.PositionBase)
	stmts := make([]Statement, 0, len(ops))
	for i, op := range ops {
		stmt, err := c.CompileOp(op, owner)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, Kind(op), err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// CompileOp compiles a single op for owner.
func (c *Compiler) CompileOp(op Op, owner ir.IRValue) (Statement, error) {
	ownerParam, err := ownerToParam(owner)
	if err != nil {
		return Statement{}, fmt.Errorf("owner: %w", err)
	}

	table := quoteIdent(c.mapping.Table)
	ownerCol := quoteIdent(c.mapping.OwnerColumn)
	posCol := quoteIdent(c.mapping.PositionColumn)
	elemCol := quoteIdent(c.mapping.ElementColumn)

	switch o := op.(type) {
	case DeleteRange:
		return Statement{
			Kind: Kind(o),
			SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s >= ? AND %s < ?", table, ownerCol, posCol, posCol),
			Args: []any{ownerParam, int64(o.From), int64(o.To)},
		}, nil
	case DeleteAll:
		return Statement{
			Kind: Kind(o),
			SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, ownerCol),
			Args: []any{ownerParam},
		}, nil
	case Shift:
		return Statement{
			Kind: Kind(o),
			SQL: fmt.Sprintf("UPDATE %s SET %s = %s + ? WHERE %s = ? AND %s >= ? AND %s < ?",
				table, posCol, posCol, ownerCol, posCol, posCol),
			Args: []any{int64(o.Offset), ownerParam, int64(o.From), int64(o.To)},
		}, nil
	case Replace:
		elem, err := ElementText(o.Value)
		if err != nil {
			return Statement{}, err
		}
		return Statement{
			Kind: Kind(o),
			SQL: fmt.Sprintf("UPDATE %s SET %s = ?, %s = ? WHERE %s = ? AND %s = ?",
				table, elemCol, posCol, ownerCol, posCol),
			Args: []any{elem, int64(o.To), ownerParam, int64(o.At)},
		}, nil
	case InsertRow:
		elem, err := ElementText(o.Value)
		if err != nil {
			return Statement{}, err
		}
		return Statement{
			Kind: Kind(o),
			SQL:  fmt.Sprintf("INSERT INTO %s (%s, %s, %s) VALUES (?, ?, ?)", table, ownerCol, posCol, elemCol),
			Args: []any{ownerParam, int64(o.At), elem},
		}, nil
	default:
		return Statement{}, fmt.Errorf("unsupported op type: %T", op)
	}
}

// SelectCollection returns the query loading owner's elements in order.
// The rowid tiebreaker keeps the order deterministic.
func (c *Compiler) SelectCollection(owner ir.IRValue) (Statement, error) {
	ownerParam, err := ownerToParam(owner)
	if err != nil {
		return Statement{}, fmt.Errorf("owner: %w", err)
	}
	return Statement{
		Kind: "select",
		SQL: fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ? ORDER BY %s ASC, rowid ASC",
			quoteIdent(c.mapping.PositionColumn),
			quoteIdent(c.mapping.ElementColumn),
			quoteIdent(c.mapping.Table),
			quoteIdent(c.mapping.OwnerColumn),
			quoteIdent(c.mapping.PositionColumn)),
		Args: []any{ownerParam},
	}, nil
}

// CreateTable returns the DDL for the mapping's table and its position
// index. The index is deliberately not UNIQUE (see package doc).
func (c *Compiler) CreateTable() []string {
	table := quoteIdent(c.mapping.Table)
	ownerCol := quoteIdent(c.mapping.OwnerColumn)
	posCol := quoteIdent(c.mapping.PositionColumn)
	elemCol := quoteIdent(c.mapping.ElementColumn)
	index := quoteIdent("idx_" + c.mapping.Table + "_" + c.mapping.OwnerColumn + "_" + c.mapping.PositionColumn)

	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s NOT NULL, %s INTEGER NOT NULL, %s TEXT NOT NULL)",
			table, ownerCol, posCol, elemCol),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)", index, table, ownerCol, posCol),
	}
}

// ElementText encodes an element as canonical JSON for the element column.
func ElementText(v ir.IRValue) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("element: %w", err)
	}
	return string(data), nil
}

// ownerToParam converts an owner id to a SQL parameter. Scalars bind
// directly; composite ids bind as canonical JSON text.
func ownerToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case nil, ir.IRNull:
		return nil, fmt.Errorf("owner id must not be null")
	case ir.IRArray, ir.IRObject:
		data, err := ir.MarshalCanonical(val)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
