// Package qa answers caregiver questions from recorded history. A question
// is bucketed into topics by keyword, the matching recent records are
// summarized, and the summary is handed to the AI as grounding context. When
// the AI fails or produces an implausible answer, a deterministic summary
// answer is returned instead.
package qa

import (
	"strings"
	"unicode"
)

// Topic is a question subject bucket mapping to one record table.
type Topic string

const (
	TopicSleep    Topic = "sleep"
	TopicFood     Topic = "food"
	TopicBehavior Topic = "behavior"
)

var topicKeywords = map[Topic][]string{
	TopicSleep:    {"sleep", "slept", "nap", "night", "wake", "woke", "bedtime"},
	TopicFood:     {"food", "eat", "ate", "drink", "drank", "bottle", "breast", "meal", "formula", "hungry"},
	TopicBehavior: {"cry", "cried", "crying", "mood", "behavior", "fussy", "calm", "smile"},
}

// allTopics is the fixed gathering order.
var allTopics = []Topic{TopicSleep, TopicFood, TopicBehavior}

// DetectTopics buckets a question by keyword. A question may match several
// topics; one matching no topic at all is answered from all three.
func DetectTopics(question string) []Topic {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		words[w] = true
	}

	var topics []Topic
	for _, topic := range allTopics {
		for _, kw := range topicKeywords[topic] {
			if words[kw] {
				topics = append(topics, topic)
				break
			}
		}
	}

	if len(topics) == 0 {
		return allTopics
	}
	return topics
}
