// Package commands implements the capture write operations.
package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
)

// loadHistory pulls the bounded learning windows the inference engine
// consumes.
func loadHistory(ctx context.Context, repo domain.LearningRepository, userID uuid.UUID) (domain.LearningHistory, error) {
	var history domain.LearningHistory

	typeRecords, err := repo.ListRecent(ctx, userID, domain.LearningKindType, domain.TypeHistoryWindow)
	if err != nil {
		return history, err
	}
	collectionRecords, err := repo.ListRecent(ctx, userID, domain.LearningKindCollection, domain.CollectionHistoryWindow)
	if err != nil {
		return history, err
	}
	priorityRecords, err := repo.ListRecent(ctx, userID, domain.LearningKindPriority, domain.PriorityHistoryWindow)
	if err != nil {
		return history, err
	}
	estimateRecords, err := repo.ListRecent(ctx, userID, domain.LearningKindEstimate, domain.EstimateHistoryWindow)
	if err != nil {
		return history, err
	}

	history.Type = typeRecords
	history.Collection = collectionRecords
	history.Priority = priorityRecords
	history.Estimate = estimateRecords
	return history, nil
}
