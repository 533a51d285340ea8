package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	storage_ref TEXT NOT NULL UNIQUE,
	public_url TEXT NOT NULL,
	title TEXT NOT NULL,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	ocr_text TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_owner_created ON notes(owner_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *NoteRepository) Insert(ctx context.Context, note *domain.Note) error {
	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO notes (id, owner_id, storage_ref, public_url, title, tags, ocr_text, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		note.ID, note.OwnerID, note.StorageRef, note.PublicURL, note.Title, tagsJSON, note.OCRText, note.CreatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "insert note", err)
	}
	return nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, owner_id, storage_ref, public_url, title, tags, ocr_text, created_at
FROM notes
WHERE owner_id = $1
ORDER BY created_at DESC
`, ownerID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "list notes", err)
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var note domain.Note
		var tagsRaw []byte
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.StorageRef, &note.PublicURL, &note.Title, &tagsRaw, &note.OCRText, &note.CreatedAt); err != nil {
			return nil, domain.WrapError(domain.ErrPersistence, "scan note", err)
		}
		if err := json.Unmarshal(tagsRaw, &note.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "iterate notes", err)
	}
	return notes, nil
}
