// Package index owns the secondary full-text + vector index DDL:
// creating idx:blogs over the doc: keyspace. DML is implicit in the
// coordination store's hash writes (internal/indexer, internal/storage)
// and is not this package's concern.
package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

type rawCommander interface {
	RawCommand(ctx context.Context, args ...interface{}) (interface{}, error)
}

// Schema configures Create. Name and Prefix are the index name and the
// doc: keyspace prefix it's built over; EmbeddingsDim and VectorEnabled
// control whether the embedding VECTOR field is added at all — a
// keyword-only deployment never declares it.
type Schema struct {
	Name          string
	Prefix        string
	EmbeddingsDim int
	VectorEnabled bool
}

// Create idempotently builds the idx:blogs schema.
// Creating an already-existing index is suppressed as success.
func Create(ctx context.Context, client rawCommander, schema Schema) error {
	args := []interface{}{
		"FT.CREATE", schema.Name,
		"ON", "HASH",
		"PREFIX", "1", schema.Prefix,
		"SCHEMA",
	}
	args = append(args, schemaFields(schema)...)

	_, err := client.RawCommand(ctx, args...)
	if err != nil {
		if strings.Contains(err.Error(), "Index already exists") {
			return nil
		}
		return fmt.Errorf("index: create %s: %w", schema.Name, err)
	}
	return nil
}

// schemaFields lists every SCHEMA token in declaration order. The
// description/subject/catalogNumber/instructor/component/level/
// genEdArea/academicYear fields are residue from a sibling use case
// that the ingest path never populates; the index still advertises
// them even though nothing writes them.
func schemaFields(schema Schema) []interface{} {
	fields := []interface{}{
		"title", "TEXT", "WEIGHT", "2.0",
		"description", "TEXT",
		"subject", "TEXT", "WEIGHT", "2.0", "NOSTEM",
		"catalogNumber", "TEXT", "WEIGHT", "2.0", "NOSTEM",
		"instructor", "TEXT", "NOSTEM", "PHONETIC", "dm:en",
		"component", "TAG",
		"level", "TAG",
		"genEdArea", "TAG",
		"academicYear", "NUMERIC",
		"content", "TEXT",
		"topics", "TAG", "SEPARATOR", ",",
		"source", "TAG", "SEPARATOR", ",",
		"company", "TAG", "SEPARATOR", ",",
		"authors", "TAG", "SEPARATOR", ",",
		"published_at", "TEXT",
		"url", "TEXT",
		"lang", "TAG", "SEPARATOR", ",",
	}
	if schema.VectorEnabled {
		fields = append(fields,
			"embedding", "VECTOR", "HNSW", "6",
			"TYPE", "FLOAT32",
			"DIM", strconv.Itoa(schema.EmbeddingsDim),
			"DISTANCE_METRIC", "COSINE",
		)
	}
	return fields
}
