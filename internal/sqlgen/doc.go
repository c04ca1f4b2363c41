// Package sqlgen turns a fusion plan into SQL for a positional table.
//
// It works in two steps:
//
//	[fusion.Plan] → Lower → [[]Op] → Compile → [[]Statement]
//
// Op is a sealed write IR (DeleteRange, DeleteAll, Shift, Replace,
// InsertRow) in stored positions. Lower fixes the statement order so that
// no two rows share a position after any statement:
//
//  1. deletes
//  2. row moves with a negative offset, lowest source first
//  3. row moves with a positive offset, highest source first
//  4. in-place replacements, which do not move
//  5. inserts, in final position order
//
// Single UPDATE statements that shift a block still pass through
// intermediate duplicates row by row, so the position column must not carry
// a UNIQUE constraint. store creates a plain index instead.
//
// All values are parameterized, never interpolated. Elements are written
// as canonical JSON text.
package sqlgen
