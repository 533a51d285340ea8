package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS analysis_history (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	course_name TEXT NOT NULL,
	report JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_user_created ON analysis_history(user_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Insert(ctx context.Context, entry *domain.HistoryEntry) error {
	reportJSON, err := json.Marshal(entry.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	// ON CONFLICT keeps queue redeliveries idempotent.
	_, err = r.db.ExecContext(ctx, `
INSERT INTO analysis_history (id, user_id, course_name, report, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO NOTHING
`,
		entry.ID, entry.UserID, entry.CourseName, reportJSON, entry.CreatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "insert history entry", err)
	}
	return nil
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, course_name, report, created_at
FROM analysis_history
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "list history", err)
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var entry domain.HistoryEntry
		var reportRaw []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.CourseName, &reportRaw, &entry.CreatedAt); err != nil {
			return nil, domain.WrapError(domain.ErrPersistence, "scan history entry", err)
		}
		if err := json.Unmarshal(reportRaw, &entry.Report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "iterate history", err)
	}
	return entries, nil
}
