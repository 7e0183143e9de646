package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
	shared "github.com/jharden/divflow/internal/shared/infrastructure/persistence"
)

// PostgresItemRepository implements domain.ItemRepository using pgx.
// pgx maps pointer fields to NULL directly, so no sql.Null wrappers.
type PostgresItemRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresItemRepository(pool *pgxpool.Pool) *PostgresItemRepository {
	return &PostgresItemRepository{pool: pool}
}

func (r *PostgresItemRepository) Save(ctx context.Context, item domain.CapturedItem) error {
	query := `
		INSERT INTO captured_items (
			id, user_id, text, created_at, updated_at,
			inferred_type, type_confidence, type_reasoning,
			collection, collection_confidence,
			priority, priority_confidence,
			estimate, estimate_confidence,
			due_at, last_reviewed_at, context, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := shared.Executor(ctx, r.pool).Exec(ctx, query,
		item.ID, item.UserID, item.Text, item.CreatedAt, item.UpdatedAt,
		item.InferredType, item.TypeConfidence, item.TypeReasoning,
		item.Collection, item.CollectionConfidence,
		item.Priority, item.PriorityConfidence,
		item.Estimate, item.EstimateConfidence,
		item.DueAt, item.LastReviewedAt, item.Context, item.Tags,
	)
	return err
}

func (r *PostgresItemRepository) Update(ctx context.Context, item domain.CapturedItem) error {
	query := `
		UPDATE captured_items SET
			text = $1, updated_at = $2,
			inferred_type = $3, type_confidence = $4, type_reasoning = $5,
			collection = $6, collection_confidence = $7,
			priority = $8, priority_confidence = $9,
			estimate = $10, estimate_confidence = $11,
			due_at = $12, last_reviewed_at = $13, context = $14, tags = $15
		WHERE id = $16 AND user_id = $17
	`
	tag, err := shared.Executor(ctx, r.pool).Exec(ctx, query,
		item.Text, item.UpdatedAt,
		item.InferredType, item.TypeConfidence, item.TypeReasoning,
		item.Collection, item.CollectionConfidence,
		item.Priority, item.PriorityConfidence,
		item.Estimate, item.EstimateConfidence,
		item.DueAt, item.LastReviewedAt, item.Context, item.Tags,
		item.ID, item.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *PostgresItemRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.CapturedItem, error) {
	query := `
		SELECT id, user_id, text, created_at, updated_at,
			inferred_type, type_confidence, type_reasoning,
			collection, collection_confidence,
			priority, priority_confidence,
			estimate, estimate_confidence,
			due_at, last_reviewed_at, context, tags
		FROM captured_items WHERE id = $1 AND user_id = $2
	`
	row := shared.Executor(ctx, r.pool).QueryRow(ctx, query, id, userID)

	var item domain.CapturedItem
	err := row.Scan(
		&item.ID, &item.UserID, &item.Text, &item.CreatedAt, &item.UpdatedAt,
		&item.InferredType, &item.TypeConfidence, &item.TypeReasoning,
		&item.Collection, &item.CollectionConfidence,
		&item.Priority, &item.PriorityConfidence,
		&item.Estimate, &item.EstimateConfidence,
		&item.DueAt, &item.LastReviewedAt, &item.Context, &item.Tags,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PostgresItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CapturedItem, error) {
	query := `
		SELECT id, user_id, text, created_at, updated_at,
			inferred_type, type_confidence, type_reasoning,
			collection, collection_confidence,
			priority, priority_confidence,
			estimate, estimate_confidence,
			due_at, last_reviewed_at, context, tags
		FROM captured_items WHERE user_id = $1 ORDER BY created_at DESC
	`
	rows, err := shared.Executor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CapturedItem
	for rows.Next() {
		var item domain.CapturedItem
		err := rows.Scan(
			&item.ID, &item.UserID, &item.Text, &item.CreatedAt, &item.UpdatedAt,
			&item.InferredType, &item.TypeConfidence, &item.TypeReasoning,
			&item.Collection, &item.CollectionConfidence,
			&item.Priority, &item.PriorityConfidence,
			&item.Estimate, &item.EstimateConfidence,
			&item.DueAt, &item.LastReviewedAt, &item.Context, &item.Tags,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
