package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
	shared "github.com/jharden/divflow/internal/shared/infrastructure/persistence"
)

// SQLiteLearningRepository implements domain.LearningRepository using
// SQLite.
type SQLiteLearningRepository struct {
	db *sql.DB
}

func NewSQLiteLearningRepository(db *sql.DB) *SQLiteLearningRepository {
	return &SQLiteLearningRepository{db: db}
}

func (r *SQLiteLearningRepository) Append(ctx context.Context, record domain.LearningRecord) error {
	query := `
		INSERT INTO learning_records (
			id, user_id, kind, pattern, value, confidence,
			created_at, was_correct, is_default
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var wasCorrect sql.NullInt32
	if record.WasCorrect != nil {
		wasCorrect = sql.NullInt32{Int32: boolToInt32(*record.WasCorrect), Valid: true}
	}

	_, err := shared.SQLiteDB(ctx, r.db).ExecContext(ctx, query,
		record.ID.String(),
		record.UserID.String(),
		string(record.Kind),
		record.Pattern,
		record.Value,
		record.Confidence,
		record.CreatedAt.Format(time.RFC3339Nano),
		wasCorrect,
		boolToInt32(record.IsDefault),
	)
	return err
}

func (r *SQLiteLearningRepository) ListRecent(ctx context.Context, userID uuid.UUID, kind domain.LearningKind, limit int) ([]domain.LearningRecord, error) {
	if limit <= 0 {
		limit = domain.WindowFor(kind)
	}

	query := `
		SELECT id, user_id, kind, pattern, value, confidence,
			created_at, was_correct, is_default
		FROM learning_records
		WHERE user_id = ? AND kind = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := shared.SQLiteDB(ctx, r.db).QueryContext(ctx, query,
		userID.String(), string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.LearningRecord
	for rows.Next() {
		var (
			rec              domain.LearningRecord
			idStr, userStr   string
			kindStr          string
			createdAt        string
			wasCorrect       sql.NullInt32
			isDefault        int32
		)
		err := rows.Scan(&idStr, &userStr, &kindStr, &rec.Pattern, &rec.Value,
			&rec.Confidence, &createdAt, &wasCorrect, &isDefault)
		if err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		if rec.UserID, err = uuid.Parse(userStr); err != nil {
			return nil, err
		}
		rec.Kind = domain.LearningKind(kindStr)
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		if wasCorrect.Valid {
			b := wasCorrect.Int32 != 0
			rec.WasCorrect = &b
		}
		rec.IsDefault = isDefault != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
