package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eng-universe/blogsearch/internal/embeddings"
	"github.com/eng-universe/blogsearch/internal/extractor"
	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/internal/storage"
	"github.com/eng-universe/blogsearch/pkg/failure"
	"github.com/eng-universe/blogsearch/pkg/vectorutil"
)

/*
Indexer drains raw:queue, turning each stored raw document
into a ParsedDocument, compute (or delegate) its embedding, and upsert
the doc:{doc_id} hash the search planner reads.

By default a single Indexer drains raw:queue in a loop; running more
than one concurrently is safe because each LPOP is atomic, exactly as
the crawl workers share the frontier.
*/

type storeClient interface {
	PopLeft(ctx context.Context, key string) (string, bool, error)
	Length(ctx context.Context, key string) (int64, error)
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	HashSet(ctx context.Context, key string, fields map[string]string) error
}

type rawSink interface {
	GetRaw(ctx context.Context, pointer string) ([]byte, error)
}

type htmlParser interface {
	Parse(pageURL string, rawHTML []byte) extractor.ParsedDocument
}

// embeddingProvider is the narrow slice of embeddings.Provider the
// indexer depends on.
type embeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, embeddings.ProviderName, failure.ClassifiedError)
}

// lateInteractionProvider is the narrow slice of
// embeddings.LateInteractionProvider the indexer depends on.
type lateInteractionProvider interface {
	AddDocuments(ctx context.Context, ids, texts []string) failure.ClassifiedError
}

// sideChannel is the optional object-store upload path for the JSON
// index payload and cleaned-text blob. It is never read back by any
// core operation.
type sideChannel interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// IndexMetrics is the optional counter sink an Indexer reports completed
// indexing operations to, mirroring crawler.CrawlMetrics.
type IndexMetrics interface {
	RecordIndex()
}

type Config struct {
	KeywordOnly       bool
	EmbeddingsDim     int
	RawQueueKey       string
	IndexerIdleGrace  time.Duration
	ExitOnIdle        bool
	EmptyPollInterval time.Duration
}

type Indexer struct {
	store        storeClient
	sink         rawSink
	parser       htmlParser
	provider     embeddingProvider
	lateBackend  lateInteractionProvider
	sideChannel  sideChannel
	docRecordKey func(id string) string
	docKey       func(docID string) string
	metadataSink metadata.MetadataSink
	metrics      IndexMetrics
	cfg          Config
}

func New(
	store storeClient,
	sink rawSink,
	parser htmlParser,
	provider embeddingProvider,
	lateBackend lateInteractionProvider,
	sideChannel sideChannel,
	docRecordKey func(string) string,
	docKey func(string) string,
	metadataSink metadata.MetadataSink,
	metrics IndexMetrics,
	cfg Config,
) *Indexer {
	return &Indexer{
		store: store, sink: sink, parser: parser, provider: provider,
		lateBackend: lateBackend, sideChannel: sideChannel,
		docRecordKey: docRecordKey, docKey: docKey,
		metadataSink: metadataSink, metrics: metrics, cfg: cfg,
	}
}

// Run drains raw:queue until ctx is cancelled, or — when cfg.ExitOnIdle
// is set — until the queue has been empty for cfg.IndexerIdleGrace, at
// which point it logs "done" and returns nil. A non-nil return means a
// coordination-store call failed; that terminates the loop for a
// supervisor to restart.
func (idx *Indexer) Run(ctx context.Context) error {
	var idleSince time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		id, ok, err := idx.store.PopLeft(ctx, idx.cfg.RawQueueKey)
		if err != nil {
			return fmt.Errorf("indexer: pop raw queue: %w", err)
		}
		if !ok {
			if idx.cfg.ExitOnIdle {
				if idleSince.IsZero() {
					idleSince = time.Now()
				} else if time.Since(idleSince) >= idx.cfg.IndexerIdleGrace {
					idx.metadataSink.RecordArtifact(metadata.NewArtifactRecord(metadata.ArtifactIndexRecord, "done"))
					return nil
				}
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(idx.cfg.EmptyPollInterval):
			}
			continue
		}
		idleSince = time.Time{}

		if err := idx.processOne(ctx, id); err != nil {
			return err
		}
	}
}

// processOne handles a single popped id end to end. A non-nil
// error here is always a store failure; every other failure mode (a
// missing crawl:doc record, a parse failure, an embedding failure) is
// logged and resolved by returning nil so the drain loop continues.
func (idx *Indexer) processOne(ctx context.Context, id string) error {
	hash, err := idx.store.HashGetAll(ctx, idx.docRecordKey(id))
	if err != nil {
		return fmt.Errorf("indexer: read crawl doc %s: %w", id, err)
	}
	if len(hash) == 0 {
		idx.metadataSink.RecordError("indexer", "processOne", mapIndexErrorToMetadataCause(ErrCauseRawMissing),
			fmt.Errorf("crawl:doc %s missing", id), metadata.NewAttr(metadata.AttrDocID, id))
		return nil
	}
	rec := storage.CrawlDocRecordFromHash(id, hash)

	pointer := rec.RawKey
	if pointer == "" {
		pointer = rec.RawPath
	}
	rawHTML, err := idx.sink.GetRaw(ctx, pointer)
	if err != nil {
		idx.metadataSink.RecordError("indexer", "processOne", metadata.CauseStorageFailure, err,
			metadata.NewAttr(metadata.AttrDocID, id), metadata.NewAttr(metadata.AttrURL, rec.URL))
		return nil
	}

	parsed := idx.parser.Parse(rec.URL, rawHTML)

	cleanPointer := rec.CleanKey
	if cleanPointer == "" {
		cleanPointer = rec.CleanedPath
	}
	if cleanPointer != "" {
		if cleanHTML, err := idx.sink.GetRaw(ctx, cleanPointer); err == nil && len(cleanHTML) > 0 {
			// The cleaned blob is still HTML: run it through the same
			// extraction as the raw document and keep only its content,
			// which is cleaner than what the raw parse produced.
			cleanParsed := idx.parser.Parse(rec.URL, cleanHTML)
			if cleanParsed.Content != "" {
				parsed.Content = cleanParsed.Content
			}
		}
	}

	if err := idx.indexDocument(ctx, parsed, rec.Source); err != nil {
		idx.metadataSink.RecordError("indexer", "indexDocument", mapIndexErrorToMetadataCause(ErrCauseEmbeddingFailed), err,
			metadata.NewAttr(metadata.AttrDocID, id), metadata.NewAttr(metadata.AttrURL, rec.URL))
		return nil
	}

	idx.uploadSideChannel(ctx, id, parsed)

	if idx.metrics != nil {
		idx.metrics.RecordIndex()
	}
	return nil
}

// indexDocument derives topics, computes (or delegates) the embedding,
// and upserts doc:{doc_id} while preserving any previously persisted
// non-empty field the new write would otherwise blank out.
func (idx *Indexer) indexDocument(ctx context.Context, doc extractor.ParsedDocument, source string) error {
	docID := doc.URL
	record := fromParsedDocument(doc, docID, source)
	record.Topics = ExtractTopics(doc.Content, nil)

	if !idx.cfg.KeywordOnly {
		text := doc.Title + "\n" + doc.Content
		if idx.lateBackend != nil {
			if err := idx.lateBackend.AddDocuments(ctx, []string{docID}, []string{text}); err != nil {
				return err
			}
		} else if idx.provider != nil {
			vec, _, err := idx.provider.Embed(ctx, text)
			if err != nil {
				return err
			}
			normalized, nErr := vectorutil.NormalizeEmbedding(vec, idx.cfg.EmbeddingsDim)
			if nErr != nil {
				return nErr
			}
			record.Embedding = vectorutil.PackFloat32(normalized)
		}
	}

	key := idx.docKey(docID)
	existing, err := idx.store.HashGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("indexer: read existing doc %s: %w", key, err)
	}

	fields := preserveExisting(record.ToHash(), existing)
	if record.Embedding != nil {
		fields["embedding"] = string(record.Embedding)
	}
	return idx.store.HashSet(ctx, key, fields)
}

// uploadSideChannel best-effort-uploads the JSON index payload and
// cleaned-text blob. Failures here are logged
// but never fail indexing: nothing on the read path depends on them.
func (idx *Indexer) uploadSideChannel(ctx context.Context, id string, doc extractor.ParsedDocument) {
	if idx.sideChannel == nil {
		return
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if _, err := idx.sideChannel.Put(ctx, "payload/"+id+".json", payload, "application/json"); err != nil {
		idx.metadataSink.RecordError("indexer", "uploadSideChannel", metadata.CauseStorageFailure, err,
			metadata.NewAttr(metadata.AttrDocID, id))
	}
	if _, err := idx.sideChannel.Put(ctx, "clean/"+id+".txt", []byte(doc.Content), "text/plain; charset=utf-8"); err != nil {
		idx.metadataSink.RecordError("indexer", "uploadSideChannel", metadata.CauseStorageFailure, err,
			metadata.NewAttr(metadata.AttrDocID, id))
	}
}
