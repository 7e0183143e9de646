package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jharden/divflow/internal/capture/domain"
	shared "github.com/jharden/divflow/internal/shared/infrastructure/persistence"
)

// PostgresLearningRepository implements domain.LearningRepository using
// pgx.
type PostgresLearningRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresLearningRepository(pool *pgxpool.Pool) *PostgresLearningRepository {
	return &PostgresLearningRepository{pool: pool}
}

func (r *PostgresLearningRepository) Append(ctx context.Context, record domain.LearningRecord) error {
	query := `
		INSERT INTO learning_records (
			id, user_id, kind, pattern, value, confidence,
			created_at, was_correct, is_default
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := shared.Executor(ctx, r.pool).Exec(ctx, query,
		record.ID, record.UserID, string(record.Kind), record.Pattern,
		record.Value, record.Confidence, record.CreatedAt,
		record.WasCorrect, record.IsDefault,
	)
	return err
}

func (r *PostgresLearningRepository) ListRecent(ctx context.Context, userID uuid.UUID, kind domain.LearningKind, limit int) ([]domain.LearningRecord, error) {
	if limit <= 0 {
		limit = domain.WindowFor(kind)
	}

	query := `
		SELECT id, user_id, kind, pattern, value, confidence,
			created_at, was_correct, is_default
		FROM learning_records
		WHERE user_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := shared.Executor(ctx, r.pool).Query(ctx, query, userID, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.LearningRecord
	for rows.Next() {
		var (
			rec  domain.LearningRecord
			kind string
		)
		err := rows.Scan(&rec.ID, &rec.UserID, &kind, &rec.Pattern, &rec.Value,
			&rec.Confidence, &rec.CreatedAt, &rec.WasCorrect, &rec.IsDefault)
		if err != nil {
			return nil, err
		}
		rec.Kind = domain.LearningKind(kind)
		records = append(records, rec)
	}
	return records, rows.Err()
}
