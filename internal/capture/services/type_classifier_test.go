package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jharden/divflow/internal/capture/domain"
)

func testClassifier() *TypeClassifier {
	return NewTypeClassifier().WithClock(func() time.Time { return fixedNow })
}

func learnedType(pattern string, value domain.ItemType, wasCorrect *bool) domain.LearningRecord {
	return domain.LearningRecord{
		ID:         uuid.New(),
		Kind:       domain.LearningKindType,
		Pattern:    pattern,
		Value:      string(value),
		Confidence: 90,
		CreatedAt:  fixedNow,
		WasCorrect: wasCorrect,
	}
}

func boolPtr(b bool) *bool { return &b }

func TestTypeClassifier_CatchAllNote(t *testing.T) {
	c := testClassifier()

	for _, text := range []string{"", "   ", "zzz qqq xxx"} {
		inf := c.Infer(text, nil)
		assert.Equal(t, domain.ItemTypeNote, inf.Type, "text=%q", text)
		assert.Equal(t, float64(catchAllConfidence), inf.Confidence)
		assert.Equal(t, catchAllReasoning, inf.Reasoning)
	}
}

func TestTypeClassifier_ExplicitReminderPhrases(t *testing.T) {
	c := testClassifier()

	for _, text := range []string{
		"remind me to water the plants",
		"don't forget the anniversary",
		"remember to defrost the chicken",
		"follow up on the invoice",
		"reminder: renew passport",
	} {
		inf := c.Infer(text, nil)
		assert.Equal(t, domain.ItemTypeReminder, inf.Type, "text=%q", text)
		assert.Equal(t, float64(exactMatchConfidence), inf.Confidence, "text=%q", text)
		assert.Contains(t, inf.Reasoning, "explicit reminder phrasing")
	}
}

func TestTypeClassifier_ReminderPhraseBeatsActionVerbs(t *testing.T) {
	c := testClassifier()

	inf := c.Infer("remind me to send the email", nil)

	assert.Equal(t, domain.ItemTypeReminder, inf.Type)
	assert.Equal(t, float64(exactMatchConfidence), inf.Confidence)
}

func TestTypeClassifier_ActionVerbs(t *testing.T) {
	c := testClassifier()

	inf := c.Infer("create a new project", nil)

	assert.Equal(t, domain.ItemTypeAction, inf.Type)
	assert.Equal(t, float64(exactMatchConfidence), inf.Confidence)
	assert.Contains(t, inf.MatchedKeywords, "create")
}

func TestTypeClassifier_NoteConfidenceCapped(t *testing.T) {
	c := testClassifier()

	inf := c.Infer("interesting idea from the research paper", nil)

	assert.Equal(t, domain.ItemTypeNote, inf.Type)
	assert.LessOrEqual(t, inf.Confidence, float64(noteCap))
}

func TestTypeClassifier_NonNoteConfidenceFloor(t *testing.T) {
	c := testClassifier()

	for _, text := range []string{
		"todo finish the report",
		"deadline for the permit is 4/15",
	} {
		inf := c.Infer(text, nil)
		require.NotEqual(t, domain.ItemTypeNote, inf.Type, "text=%q", text)
		assert.GreaterOrEqual(t, inf.Confidence, float64(exactMatchConfidence), "text=%q", text)
	}
}

func TestTypeClassifier_LearnedCorrection(t *testing.T) {
	c := testClassifier()

	// "groceries" carries no built-in signal; history says it is an
	// action.
	history := []domain.LearningRecord{
		learnedType("groceries", domain.ItemTypeAction, boolPtr(true)),
	}

	inf := c.Infer("groceries for the week", history)

	assert.Equal(t, domain.ItemTypeAction, inf.Type)
	assert.Contains(t, inf.MatchedKeywords, "groceries")
}

func TestTypeClassifier_RejectedCorrectionIgnored(t *testing.T) {
	c := testClassifier()

	history := []domain.LearningRecord{
		learnedType("groceries", domain.ItemTypeAction, boolPtr(false)),
	}

	inf := c.Infer("groceries for the week", history)

	// The rejected record contributes nothing, so the catch-all applies.
	assert.Equal(t, domain.ItemTypeNote, inf.Type)
	assert.Equal(t, float64(catchAllConfidence), inf.Confidence)
}

func TestTypeClassifier_DateBoostsReminder(t *testing.T) {
	c := testClassifier()

	inf := c.Infer("dentist 4/15", nil)

	assert.Equal(t, domain.ItemTypeReminder, inf.Type)
	assert.Contains(t, inf.MatchedKeywords, "date/time found")
}

func TestTypeClassifier_ReasoningReportsScores(t *testing.T) {
	c := testClassifier()

	inf := c.Infer("todo finish the report", nil)

	assert.Contains(t, inf.Reasoning, "note=")
	assert.Contains(t, inf.Reasoning, "action=")
	assert.Contains(t, inf.Reasoning, "reminder=")
	assert.Contains(t, inf.Reasoning, "matched:")
}

func TestTypeClassifier_HostileInputs(t *testing.T) {
	c := testClassifier()

	inputs := []string{
		strings.Repeat("remind ", 500),
		"(((((((",
		"\x00\x01\x02",
		"🙂🙃🙂🙃",
		strings.Repeat("a", 10000),
	}
	for _, text := range inputs {
		assert.NotPanics(t, func() {
			inf := c.Infer(text, nil)
			assert.True(t, inf.Type.IsValid())
		})
	}
}
