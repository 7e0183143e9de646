package services

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
)

// phraseBoost is a fixed phrase that bumps a bucket score when it appears
// anywhere in the lowercased text, independent of learning-record scoring.
type phraseBoost struct {
	Phrase string
	Target domain.ItemType
	Weight float64
}

// reminderPhraseBoosts are explicit reminder phrasings. Any one of them
// present alongside a nonzero reminder score wins the classification
// outright at confidence 95.
var reminderPhraseBoosts = []phraseBoost{
	{Phrase: "remind me to", Target: domain.ItemTypeReminder, Weight: 4},
	{Phrase: "follow up on", Target: domain.ItemTypeReminder, Weight: 4},
	{Phrase: "don't forget", Target: domain.ItemTypeReminder, Weight: 3},
	{Phrase: "remember to", Target: domain.ItemTypeReminder, Weight: 4},
	{Phrase: "need to remember", Target: domain.ItemTypeReminder, Weight: 4},
}

// actionVerbBoosts are common action verbs that bias toward the action
// bucket.
var actionVerbBoosts = []phraseBoost{
	{Phrase: "create", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "make", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "write", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "send", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "call", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "email", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "fix", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "build", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "update", Target: domain.ItemTypeAction, Weight: 2},
	{Phrase: "submit", Target: domain.ItemTypeAction, Weight: 3},
}

const (
	// reminderPrefix is the explicit override prefix, matched
	// case-insensitively at the start of the text.
	reminderPrefix = "reminder:"

	// reminderPrefixBoost is the flat boost for the explicit prefix.
	reminderPrefixBoost = 5.0

	// dateFoundBoost is added to the reminder bucket when the date/time
	// extractor found a temporal expression in the text.
	dateFoundBoost = 2.0

	// actionSuppression scales how much a nonzero action score reduces a
	// nonzero reminder score.
	actionSuppression = 0.2

	// partialMatchWeight discounts substring matches against exact ones.
	partialMatchWeight = 0.75
)

// urgencyPattern maps a compiled phrase pattern to a priority bucket.
// Each pattern contributes weight 1.0 at most once.
type urgencyPattern struct {
	Pattern  *regexp.Regexp
	Priority domain.Priority
}

var highUrgencyPatterns = compileUrgency(domain.PriorityHigh,
	`\burgent\b`,
	`\basap\b`,
	`\bcritical\b`,
	`\bemergency\b`,
	`\bimportant\b`,
	`\btoday\b`,
	`\bnow\b`,
	`\bimmediately\b`,
	`\bdeadline\b`,
	`\boverdue\b`,
	`\bhigh priority\b`,
)

var lowUrgencyPatterns = compileUrgency(domain.PriorityLow,
	`\bsomeday\b`,
	`\bmaybe\b`,
	`\beventually\b`,
	`\bwhenever\b`,
	`\blow priority\b`,
	`\bnice to have\b`,
	`\bif i have time\b`,
	`\bno rush\b`,
)

func compileUrgency(p domain.Priority, exprs ...string) []urgencyPattern {
	out := make([]urgencyPattern, len(exprs))
	for i, e := range exprs {
		out[i] = urgencyPattern{Pattern: regexp.MustCompile(e), Priority: p}
	}
	return out
}

// estimateBucket pairs an effort bucket with its phrase patterns. Buckets
// are ordered shortest first; ties between buckets resolve to the earlier
// one in this list.
type estimateBucket struct {
	Estimate domain.Estimate
	Patterns []*regexp.Regexp
}

var estimateBuckets = []estimateBucket{
	{Estimate: domain.Estimate5Min, Patterns: compileAll(
		`\b5\s*min(ute)?s?\b`,
		`\bfive min(ute)?s?\b`,
		`\breal quick\b`,
		`\bquick(ly)?\b`,
		`\bcouple (of )?min(ute)?s?\b`,
	)},
	{Estimate: domain.Estimate15Min, Patterns: compileAll(
		`\b15\s*min(ute)?s?\b`,
		`\bfifteen min(ute)?s?\b`,
		`\bquarter (of an )?hour\b`,
	)},
	{Estimate: domain.Estimate30Min, Patterns: compileAll(
		`\b30\s*min(ute)?s?\b`,
		`\bthirty min(ute)?s?\b`,
		`\bhalf (an )?hour\b`,
	)},
	{Estimate: domain.Estimate1Hour, Patterns: compileAll(
		`\b1\s*h(ou)?r\b`,
		`\ban hour\b`,
		`\bone hour\b`,
		`\b60\s*min(ute)?s?\b`,
	)},
	{Estimate: domain.Estimate2Hours, Patterns: compileAll(
		`\b2\s*h(ou)?rs?\b`,
		`\btwo hours\b`,
		`\bcouple (of )?hours\b`,
		`\bfew hours\b`,
	)},
	{Estimate: domain.EstimateDay, Patterns: compileAll(
		`\ball day\b`,
		`\bfull day\b`,
		`\bwhole day\b`,
		`\bbig project\b`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// seedConfidence is the confidence assigned to built-in seed patterns.
const seedConfidence = 80

// DefaultTypeSeeds returns the built-in keyword patterns consulted by the
// type classifier alongside user-learned records. They carry IsDefault so
// they always count for scoring.
func DefaultTypeSeeds() []domain.LearningRecord {
	seeds := []struct {
		pattern string
		value   domain.ItemType
	}{
		{"note", domain.ItemTypeNote},
		{"idea", domain.ItemTypeNote},
		{"thought", domain.ItemTypeNote},
		{"learned", domain.ItemTypeNote},
		{"interesting", domain.ItemTypeNote},
		{"research", domain.ItemTypeNote},

		{"todo", domain.ItemTypeAction},
		{"task", domain.ItemTypeAction},
		{"need to", domain.ItemTypeAction},
		{"should", domain.ItemTypeAction},
		{"finish", domain.ItemTypeAction},
		{"complete", domain.ItemTypeAction},
		{"buy", domain.ItemTypeAction},
		{"schedule", domain.ItemTypeAction},

		{"remind", domain.ItemTypeReminder},
		{"reminder", domain.ItemTypeReminder},
		{"remember", domain.ItemTypeReminder},
		{"due", domain.ItemTypeReminder},
		{"deadline", domain.ItemTypeReminder},
		{"appointment", domain.ItemTypeReminder},
	}

	records := make([]domain.LearningRecord, len(seeds))
	for i, s := range seeds {
		records[i] = domain.LearningRecord{
			ID:         uuid.New(),
			Kind:       domain.LearningKindType,
			Pattern:    s.pattern,
			Value:      string(s.value),
			Confidence: seedConfidence,
			CreatedAt:  time.Time{},
			IsDefault:  true,
		}
	}
	return records
}
