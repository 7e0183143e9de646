package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharden/divflow/internal/capture/domain"
)

func testEngine() *InferenceEngine {
	return NewInferenceEngine(nil).WithClock(func() time.Time { return fixedNow })
}

func testUserID() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-000000000001")
}

func newTestItem(t *testing.T, text string) *domain.CapturedItem {
	t.Helper()
	item, err := domain.NewCapturedItem(testUserID(), text)
	require.NoError(t, err)
	return item
}

func TestInferenceEngine_PopulatesAllFields(t *testing.T) {
	e := testEngine()
	item := newTestItem(t, "todo fix the kitchen faucet tomorrow")

	e.Process(item, domain.LearningHistory{})

	require.NotNil(t, item.InferredType)
	assert.Equal(t, domain.ItemTypeAction, *item.InferredType)
	require.NotNil(t, item.TypeConfidence)
	require.NotNil(t, item.TypeReasoning)
	require.NotNil(t, item.DueAt)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), *item.DueAt)
	require.NotNil(t, item.Priority)
	require.NotNil(t, item.Estimate)
}

func TestInferenceEngine_NotesGetNoPriorityOrEstimate(t *testing.T) {
	e := testEngine()
	item := newTestItem(t, "interesting idea from the research paper")

	e.Process(item, domain.LearningHistory{})

	require.NotNil(t, item.InferredType)
	assert.Equal(t, domain.ItemTypeNote, *item.InferredType)
	assert.Nil(t, item.Priority)
	assert.Nil(t, item.Estimate)
}

func TestInferenceEngine_SkipsConfirmedFields(t *testing.T) {
	e := testEngine()
	item := newTestItem(t, "todo fix the kitchen faucet")

	confirmed := domain.ItemTypeNote
	conf := float64(100)
	item.InferredType = &confirmed
	item.TypeConfidence = &conf

	e.Process(item, domain.LearningHistory{})

	assert.Equal(t, domain.ItemTypeNote, *item.InferredType)
	assert.Equal(t, float64(100), *item.TypeConfidence)
	// A confirmed note still gets no priority or estimate.
	assert.Nil(t, item.Priority)
}

func TestInferenceEngine_PreservesExistingDueDate(t *testing.T) {
	e := testEngine()
	item := newTestItem(t, "pay the bill tomorrow")

	existing := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	item.DueAt = &existing

	e.Process(item, domain.LearningHistory{})

	assert.Equal(t, existing, *item.DueAt)
}

func TestInferenceEngine_UsesLearningHistory(t *testing.T) {
	e := testEngine()
	item := newTestItem(t, "drain water from the mgb bilge")

	history := domain.LearningHistory{
		Type: []domain.LearningRecord{
			learnedType("bilge", domain.ItemTypeAction, boolPtr(true)),
		},
		Collection: []domain.LearningRecord{
			learnedCollection("drain water from mgb bilge", "boat", 90),
		},
	}

	e.Process(item, history)

	require.NotNil(t, item.InferredType)
	assert.Equal(t, domain.ItemTypeAction, *item.InferredType)
	require.NotNil(t, item.Collection)
	assert.Equal(t, "boat", *item.Collection)
	require.NotNil(t, item.CollectionConfidence)
}

func TestInferenceEngine_DateWordsFeedTypeButNotPriority(t *testing.T) {
	e := testEngine()
	item := newTestItem(t, "todo fix the kitchen faucet today")

	e.Process(item, domain.LearningHistory{})

	// The type classifier scores the raw text, so the date expression
	// still contributes its reminder boost (which the action verbs then
	// suppress), and the due date resolves.
	require.NotNil(t, item.InferredType)
	assert.Equal(t, domain.ItemTypeAction, *item.InferredType)
	require.NotNil(t, item.DueAt)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), *item.DueAt)

	// Priority scores the remaining text with "today" already removed,
	// so no urgency language is left and the default applies. Fed the
	// raw text instead, "today" would have forced high priority.
	require.NotNil(t, item.Priority)
	assert.Equal(t, domain.PriorityMedium, *item.Priority)
	require.NotNil(t, item.PriorityConfidence)
	assert.Equal(t, float64(urgencyDefaultConfidence), *item.PriorityConfidence)

	raw := NewPriorityClassifier().Infer(item.Text, domain.ItemTypeAction, nil)
	assert.Equal(t, domain.PriorityHigh, raw.Priority)
}

func TestInferenceEngine_Deterministic(t *testing.T) {
	e := testEngine()

	first := newTestItem(t, "remind me to renew the passport by april 15th")
	second := newTestItem(t, "remind me to renew the passport by april 15th")

	e.Process(first, domain.LearningHistory{})
	e.Process(second, domain.LearningHistory{})

	assert.Equal(t, *first.InferredType, *second.InferredType)
	assert.Equal(t, *first.TypeConfidence, *second.TypeConfidence)
	assert.Equal(t, *first.TypeReasoning, *second.TypeReasoning)
	require.NotNil(t, first.DueAt)
	require.NotNil(t, second.DueAt)
	assert.Equal(t, *first.DueAt, *second.DueAt)
}
