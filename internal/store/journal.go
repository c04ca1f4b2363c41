package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/listfuse/internal/ir"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertFlushSQL = `
		INSERT INTO flushes
		(session_id, seq, collection, owner, plan_id, strategy,
		 remove_count, add_count, update_count, statements, plan)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

// WriteFlush appends a flush record to the journal and returns its ID.
func (s *Store) WriteFlush(ctx context.Context, rec ir.FlushRecord) (int64, error) {
	return insertFlush(ctx, s.db, rec)
}

func insertFlush(ctx context.Context, db execer, rec ir.FlushRecord) (int64, error) {
	result, err := db.ExecContext(ctx, insertFlushSQL,
		rec.SessionID,
		rec.Seq,
		rec.Collection,
		rec.Owner,
		rec.PlanID,
		rec.Strategy,
		rec.RemoveCount,
		rec.AddCount,
		rec.UpdateCount,
		rec.Statements,
		rec.Plan,
	)
	if err != nil {
		return 0, fmt.Errorf("write flush: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write flush: last insert id: %w", err)
	}
	return id, nil
}

// ReadFlushes returns journal rows for sessionID ordered by seq, id.
// An empty sessionID returns every session's rows.
//
// Returns an empty slice (not nil) if no records exist.
func (s *Store) ReadFlushes(ctx context.Context, sessionID string) ([]ir.FlushRecord, error) {
	query := `
		SELECT id, session_id, seq, collection, owner, plan_id, strategy,
		       remove_count, add_count, update_count, statements, plan
		FROM flushes
		WHERE (? = '' OR session_id = ?)
		ORDER BY seq ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query flushes: %w", err)
	}
	defer rows.Close()

	records := []ir.FlushRecord{}
	for rows.Next() {
		var rec ir.FlushRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Seq,
			&rec.Collection,
			&rec.Owner,
			&rec.PlanID,
			&rec.Strategy,
			&rec.RemoveCount,
			&rec.AddCount,
			&rec.UpdateCount,
			&rec.Statements,
			&rec.Plan,
		); err != nil {
			return nil, fmt.Errorf("scan flush: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flushes: %w", err)
	}
	return records, nil
}
