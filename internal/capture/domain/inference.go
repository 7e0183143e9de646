package domain

import "time"

// TypeInference is the result of classifying text into note/action/reminder.
type TypeInference struct {
	Type            ItemType
	Confidence      float64
	Reasoning       string
	MatchedKeywords []string
}

// CollectionInference proposes a collection for an item. Collection is
// empty when nothing reached the minimum match count.
type CollectionInference struct {
	Collection   string
	Confidence   float64
	MatchedWords []string
}

// PriorityInference is the urgency classification result.
type PriorityInference struct {
	Priority   Priority
	Confidence float64
	Reasoning  string
}

// EstimateInference is the effort classification result.
type EstimateInference struct {
	Estimate   Estimate
	Confidence float64
	Reasoning  string
}

// DateTimeResult carries an extracted timestamp (nil when no temporal
// expression was found) and the text with the matched phrase removed.
type DateTimeResult struct {
	When      *time.Time
	Remaining string
}
