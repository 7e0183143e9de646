package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jharden/divflow/internal/capture/domain"
)

const (
	// catchAllConfidence applies when no signal of any kind matched.
	catchAllConfidence = 85

	// exactMatchConfidence is assigned when explicit reminder phrasing
	// short-circuits the bucket competition, and is the floor for any
	// non-note winner.
	exactMatchConfidence = 95

	// normalizedCap keeps score-ratio confidence strictly below the
	// exact-match band.
	normalizedCap = 94.9

	// ambiguousFloor applies when the winner's share of total score is
	// below noteToActionRatio.
	ambiguousFloor = 75

	// actionDominantFloor applies when action outscores both other
	// buckets combined.
	actionDominantFloor = 90

	// noteCap bounds any note classification.
	noteCap = 85

	// noteToActionRatio controls both the ambiguity floor and the
	// note-to-action flip when action trails note closely.
	noteToActionRatio = 0.8
)

const catchAllReasoning = "no classification signal found; defaulting to note"

// TypeClassifier infers whether captured text is a note, action, or
// reminder using built-in seeds plus the caller's learning history.
type TypeClassifier struct {
	seeds []domain.LearningRecord
	now   func() time.Time
}

func NewTypeClassifier() *TypeClassifier {
	return &TypeClassifier{
		seeds: DefaultTypeSeeds(),
		now:   time.Now,
	}
}

// WithClock fixes the classifier's notion of now; used by the date/time
// boost and by tests.
func (c *TypeClassifier) WithClock(now func() time.Time) *TypeClassifier {
	c.now = now
	return c
}

// bucketScores accumulates evidence for one item type.
type bucketScores struct {
	score   float64
	records int
	matched []string
	seen    map[string]bool
}

func newBucketScores() *bucketScores {
	return &bucketScores{seen: map[string]bool{}}
}

// add credits a learning-record match. Record count participates in
// tie-breaking.
func (b *bucketScores) add(score float64, keyword string) {
	b.score += score
	b.records++
	b.noteKeyword(keyword)
}

// addBoost credits a phrase or structural boost without counting a
// learning record.
func (b *bucketScores) addBoost(score float64, keyword string) {
	b.score += score
	b.noteKeyword(keyword)
}

func (b *bucketScores) noteKeyword(keyword string) {
	if keyword == "" || b.seen[keyword] {
		return
	}
	b.seen[keyword] = true
	b.matched = append(b.matched, keyword)
}

// Infer classifies text into note, action, or reminder.
func (c *TypeClassifier) Infer(text string, history []domain.LearningRecord) domain.TypeInference {
	lower := strings.ToLower(text)
	candidates := keywordCandidates(text)

	buckets := map[domain.ItemType]*bucketScores{
		domain.ItemTypeNote:     newBucketScores(),
		domain.ItemTypeAction:   newBucketScores(),
		domain.ItemTypeReminder: newBucketScores(),
	}

	c.scoreLearningRecords(buckets, candidates, history)

	phraseHit := false
	for _, pb := range reminderPhraseBoosts {
		if strings.Contains(lower, pb.Phrase) {
			buckets[pb.Target].addBoost(pb.Weight, pb.Phrase)
			phraseHit = true
		}
	}
	for _, pb := range actionVerbBoosts {
		if strings.Contains(lower, pb.Phrase) {
			buckets[pb.Target].addBoost(pb.Weight, pb.Phrase)
		}
	}

	explicitPrefix := strings.HasPrefix(lower, reminderPrefix)
	if explicitPrefix {
		buckets[domain.ItemTypeReminder].addBoost(reminderPrefixBoost, reminderPrefix)
	}

	if extracted := ExtractDateTime(text, c.now()); extracted.When != nil {
		buckets[domain.ItemTypeReminder].addBoost(dateFoundBoost, "date/time found")
	}

	// A nonzero action score dampens the reminder bucket so that
	// scheduled tasks stay actions.
	actionScore := buckets[domain.ItemTypeAction].score
	if actionScore > 0 && buckets[domain.ItemTypeReminder].score > 0 {
		buckets[domain.ItemTypeReminder].score -= actionScore * actionSuppression
		if buckets[domain.ItemTypeReminder].score < 0 {
			buckets[domain.ItemTypeReminder].score = 0
		}
	}

	noteScore := buckets[domain.ItemTypeNote].score
	actionScore = buckets[domain.ItemTypeAction].score
	reminderScore := buckets[domain.ItemTypeReminder].score
	total := noteScore + actionScore + reminderScore

	if total == 0 {
		return domain.TypeInference{
			Type:       domain.ItemTypeNote,
			Confidence: catchAllConfidence,
			Reasoning:  catchAllReasoning,
		}
	}

	reasoning := func(lead string, winner domain.ItemType) string {
		matched := buckets[winner].matched
		sort.Strings(matched)
		return fmt.Sprintf("%s: note=%.2f action=%.2f reminder=%.2f; matched: %s",
			lead, noteScore, actionScore, reminderScore, strings.Join(matched, ", "))
	}

	if reminderScore > 0 && (phraseHit || explicitPrefix) {
		return domain.TypeInference{
			Type:            domain.ItemTypeReminder,
			Confidence:      exactMatchConfidence,
			Reasoning:       reasoning("explicit reminder phrasing", domain.ItemTypeReminder),
			MatchedKeywords: buckets[domain.ItemTypeReminder].matched,
		}
	}

	winner, winnerScore := pickWinner(buckets, noteScore, actionScore, reminderScore)

	confidence := math.Min(winnerScore/total*100, normalizedCap)
	if winnerScore > 0.9*total {
		confidence = exactMatchConfidence
	}
	if winnerScore/total < noteToActionRatio && confidence < ambiguousFloor {
		confidence = ambiguousFloor
	}
	if winner == domain.ItemTypeAction && actionScore > noteScore+reminderScore &&
		confidence < actionDominantFloor {
		confidence = actionDominantFloor
	}

	// Close action runner-up flips a note to an action; doing beats
	// filing.
	if winner == domain.ItemTypeNote && actionScore > noteToActionRatio*noteScore {
		winner = domain.ItemTypeAction
	}

	if winner == domain.ItemTypeNote {
		if confidence > noteCap {
			confidence = noteCap
		}
	} else if confidence < exactMatchConfidence {
		confidence = exactMatchConfidence
	}

	return domain.TypeInference{
		Type:            winner,
		Confidence:      confidence,
		Reasoning:       reasoning("keyword scoring", winner),
		MatchedKeywords: buckets[winner].matched,
	}
}

func (c *TypeClassifier) scoreLearningRecords(buckets map[domain.ItemType]*bucketScores, candidates []string, history []domain.LearningRecord) {
	records := make([]domain.LearningRecord, 0, len(c.seeds)+len(history))
	records = append(records, c.seeds...)
	records = append(records, history...)

	for _, rec := range records {
		if rec.Kind != domain.LearningKindType || !rec.CountsForScoring() {
			continue
		}
		bucket, ok := buckets[domain.ItemType(rec.Value)]
		if !ok {
			continue
		}
		pattern := strings.ToLower(rec.Pattern)
		var best float64
		var bestKeyword string
		for _, cand := range candidates {
			if cand == pattern {
				best = rec.Confidence / 100
				bestKeyword = pattern
				break
			}
			if strings.Contains(cand, pattern) || strings.Contains(pattern, cand) {
				partial := rec.Confidence / 100 * partialMatchWeight
				if partial > best {
					best = partial
					bestKeyword = pattern
				}
			}
		}
		if best > 0 {
			bucket.add(best, bestKeyword)
		}
	}
}

// pickWinner resolves the highest-scoring bucket. On equal scores the
// bucket backed by more learning records wins; the iteration order makes
// reminder beat action beat note when records tie too.
func pickWinner(buckets map[domain.ItemType]*bucketScores, noteScore, actionScore, reminderScore float64) (domain.ItemType, float64) {
	type entry struct {
		itemType domain.ItemType
		score    float64
	}
	entries := []entry{
		{domain.ItemTypeReminder, reminderScore},
		{domain.ItemTypeAction, actionScore},
		{domain.ItemTypeNote, noteScore},
	}

	winner := entries[0]
	for _, e := range entries[1:] {
		if e.score > winner.score {
			winner = e
			continue
		}
		if e.score == winner.score &&
			buckets[e.itemType].records > buckets[winner.itemType].records {
			winner = e
		}
	}
	return winner.itemType, winner.score
}
