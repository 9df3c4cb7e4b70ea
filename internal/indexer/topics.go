package indexer

import (
	"fmt"
	"regexp"
	"sync"
)

// DefaultTopics is the fixed keyword list matched against a document's
// content to derive its topics tag list. Kept as a small hand-curated
// set rather than grown into a larger taxonomy; see DESIGN.md for why a
// fixed list is kept instead of real tokenization.
var DefaultTopics = []string{
	"Kafka",
	"Flink",
	"Spark",
	"Redis",
	"Kubernetes",
	"Ray",
	"TensorFlow",
	"PyTorch",
	"GraphQL",
	"React",
	"Rust",
}

var (
	topicRegexMu sync.Mutex
	topicRegexes = map[string]*regexp.Regexp{}
)

// ExtractTopics reports which of topics (DefaultTopics when nil) appear
// in text, case-insensitively, preserving input order. Matching is
// whole-word (\b-delimited) rather than a bare substring search, which
// would false-positive on e.g. "Rust" inside "trusting".
func ExtractTopics(text string, topics []string) []string {
	if topics == nil {
		topics = DefaultTopics
	}
	found := make([]string, 0, len(topics))
	for _, topic := range topics {
		if topicRegexFor(topic).MatchString(text) {
			found = append(found, topic)
		}
	}
	return found
}

func topicRegexFor(topic string) *regexp.Regexp {
	topicRegexMu.Lock()
	defer topicRegexMu.Unlock()
	if re, ok := topicRegexes[topic]; ok {
		return re
	}
	re := regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(topic)))
	topicRegexes[topic] = re
	return re
}
