package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTopicsMatchesWholeWordsCaseInsensitively(t *testing.T) {
	topics := ExtractTopics("We migrated from kafka to Flink and wrote the workers in RUST.", nil)
	assert.Equal(t, []string{"Kafka", "Flink", "Rust"}, topics)
}

func TestExtractTopicsRejectsSubstringHits(t *testing.T) {
	topics := ExtractTopics("trusting the process, sparking joy, raytracing", nil)
	assert.Empty(t, topics, "Rust/Spark/Ray inside larger words must not match")
}

func TestExtractTopicsPreservesListOrder(t *testing.T) {
	topics := ExtractTopics("React on GraphQL on Kubernetes", nil)
	assert.Equal(t, []string{"Kubernetes", "GraphQL", "React"}, topics)
}

func TestExtractTopicsCustomList(t *testing.T) {
	topics := ExtractTopics("all about zig and odin", []string{"Zig", "Odin", "Hare"})
	assert.Equal(t, []string{"Zig", "Odin"}, topics)
}
