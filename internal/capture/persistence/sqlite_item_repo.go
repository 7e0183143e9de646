package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
	shared "github.com/jharden/divflow/internal/shared/infrastructure/persistence"
)

// SQLiteItemRepository implements domain.ItemRepository using SQLite.
// When the context carries a transaction, queries run inside it.
type SQLiteItemRepository struct {
	db *sql.DB
}

func NewSQLiteItemRepository(db *sql.DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{db: db}
}

const itemColumns = `id, user_id, text, created_at, updated_at,
	inferred_type, type_confidence, type_reasoning,
	collection, collection_confidence,
	priority, priority_confidence,
	estimate, estimate_confidence,
	due_at, last_reviewed_at, context, tags`

func (r *SQLiteItemRepository) Save(ctx context.Context, item domain.CapturedItem) error {
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO captured_items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = shared.SQLiteDB(ctx, r.db).ExecContext(ctx, query,
		item.ID.String(),
		item.UserID.String(),
		item.Text,
		item.CreatedAt.Format(time.RFC3339Nano),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullStringFromType(item.InferredType),
		nullFloat(item.TypeConfidence),
		nullString(item.TypeReasoning),
		nullString(item.Collection),
		nullFloat(item.CollectionConfidence),
		nullStringFromPriority(item.Priority),
		nullFloat(item.PriorityConfidence),
		nullStringFromEstimate(item.Estimate),
		nullFloat(item.EstimateConfidence),
		nullTime(item.DueAt),
		nullTime(item.LastReviewedAt),
		item.Context,
		string(tags),
	)
	return err
}

func (r *SQLiteItemRepository) Update(ctx context.Context, item domain.CapturedItem) error {
	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE captured_items SET
			text = ?, updated_at = ?,
			inferred_type = ?, type_confidence = ?, type_reasoning = ?,
			collection = ?, collection_confidence = ?,
			priority = ?, priority_confidence = ?,
			estimate = ?, estimate_confidence = ?,
			due_at = ?, last_reviewed_at = ?, context = ?, tags = ?
		WHERE id = ? AND user_id = ?
	`
	result, err := shared.SQLiteDB(ctx, r.db).ExecContext(ctx, query,
		item.Text,
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullStringFromType(item.InferredType),
		nullFloat(item.TypeConfidence),
		nullString(item.TypeReasoning),
		nullString(item.Collection),
		nullFloat(item.CollectionConfidence),
		nullStringFromPriority(item.Priority),
		nullFloat(item.PriorityConfidence),
		nullStringFromEstimate(item.Estimate),
		nullFloat(item.EstimateConfidence),
		nullTime(item.DueAt),
		nullTime(item.LastReviewedAt),
		item.Context,
		string(tags),
		item.ID.String(),
		item.UserID.String(),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *SQLiteItemRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.CapturedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM captured_items WHERE id = ? AND user_id = ?`
	row := shared.SQLiteDB(ctx, r.db).QueryRowContext(ctx, query, id.String(), userID.String())

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *SQLiteItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CapturedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM captured_items WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := shared.SQLiteDB(ctx, r.db).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CapturedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.CapturedItem, error) {
	var (
		item                         domain.CapturedItem
		idStr, userIDStr             string
		createdAt, updatedAt         string
		inferredType, typeReasoning  sql.NullString
		typeConf                     sql.NullFloat64
		collection                   sql.NullString
		collectionConf               sql.NullFloat64
		priority, estimate           sql.NullString
		priorityConf, estimateConf   sql.NullFloat64
		dueAt, lastReviewedAt        sql.NullString
		tags                         string
	)

	err := row.Scan(
		&idStr, &userIDStr, &item.Text, &createdAt, &updatedAt,
		&inferredType, &typeConf, &typeReasoning,
		&collection, &collectionConf,
		&priority, &priorityConf,
		&estimate, &estimateConf,
		&dueAt, &lastReviewedAt, &item.Context, &tags,
	)
	if err != nil {
		return nil, err
	}

	if item.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if item.UserID, err = uuid.Parse(userIDStr); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}

	if inferredType.Valid {
		t := domain.ItemType(inferredType.String)
		item.InferredType = &t
	}
	item.TypeConfidence = floatPtr(typeConf)
	if typeReasoning.Valid {
		item.TypeReasoning = &typeReasoning.String
	}
	if collection.Valid {
		item.Collection = &collection.String
	}
	item.CollectionConfidence = floatPtr(collectionConf)
	if priority.Valid {
		p := domain.Priority(priority.String)
		item.Priority = &p
	}
	item.PriorityConfidence = floatPtr(priorityConf)
	if estimate.Valid {
		e := domain.Estimate(estimate.String)
		item.Estimate = &e
	}
	item.EstimateConfidence = floatPtr(estimateConf)

	if item.DueAt, err = timePtr(dueAt); err != nil {
		return nil, err
	}
	if item.LastReviewedAt, err = timePtr(lastReviewedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, err
	}
	return &item, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullStringFromType(t *domain.ItemType) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*t), Valid: true}
}

func nullStringFromPriority(p *domain.Priority) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func nullStringFromEstimate(e *domain.Estimate) sql.NullString {
	if e == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*e), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func timePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
