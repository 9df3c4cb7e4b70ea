package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eng-universe/blogsearch/internal/metadata"
	"github.com/eng-universe/blogsearch/internal/objectstore"
	"github.com/eng-universe/blogsearch/pkg/fileutil"
	"github.com/eng-universe/blogsearch/pkg/hashutil"
)

// RawSink persists a fetched page's raw bytes somewhere durable and
// returns a pointer (filesystem path or object-store key) to it. Crawl
// workers hold one of these; which implementation is wired depends on
// whether R2 credentials are configured.
type RawSink interface {
	PutRaw(ctx context.Context, id string, data []byte) (string, error)
	GetRaw(ctx context.Context, pointer string) ([]byte, error)
}

// LocalSink writes raw HTML beneath baseDir/raw/{id}.html, the
// filesystem fallback used when no object store is configured.
type LocalSink struct {
	baseDir      string
	metadataSink metadata.MetadataSink
}

func NewLocalSink(baseDir string, metadataSink metadata.MetadataSink) *LocalSink {
	return &LocalSink{baseDir: baseDir, metadataSink: metadataSink}
}

func (s *LocalSink) PutRaw(ctx context.Context, id string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, "raw")
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", &StorageError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError, Path: dir}
	}
	path := filepath.Join(dir, id+".html")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, Path: path}
	}
	s.metadataSink.RecordArtifact(metadata.NewArtifactRecord(metadata.ArtifactRawHTML, path))
	return path, nil
}

func (s *LocalSink) GetRaw(ctx context.Context, pointer string) ([]byte, error) {
	data, err := os.ReadFile(pointer)
	if err != nil {
		return nil, &StorageError{Message: err.Error(), Retryable: false, Cause: ErrCauseReadFailure, Path: pointer}
	}
	return data, nil
}

// ObjectSink writes raw HTML to an R2-compatible bucket under raw/{id}.html.
type ObjectSink struct {
	store        *objectstore.Store
	metadataSink metadata.MetadataSink
}

func NewObjectSink(store *objectstore.Store, metadataSink metadata.MetadataSink) *ObjectSink {
	return &ObjectSink{store: store, metadataSink: metadataSink}
}

func (s *ObjectSink) PutRaw(ctx context.Context, id string, data []byte) (string, error) {
	key := objectstore.RawKey(id)
	if _, err := s.store.Put(ctx, key, data, "text/html; charset=utf-8"); err != nil {
		return "", &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseWriteFailure, Path: key}
	}
	s.metadataSink.RecordArtifact(metadata.NewArtifactRecord(metadata.ArtifactRawHTML, key))
	return key, nil
}

func (s *ObjectSink) GetRaw(ctx context.Context, pointer string) ([]byte, error) {
	data, err := s.store.Get(ctx, pointer)
	if err != nil {
		return nil, &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadFailure, Path: pointer}
	}
	return data, nil
}

// storeClient is the narrow slice of store.Client the crawl-doc writer
// needs.
type storeClient interface {
	Incr(ctx context.Context, key string) (int64, error)
	HashSet(ctx context.Context, key string, fields map[string]string) error
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	PushRight(ctx context.Context, key, value string) error
}

// Writer ties the raw sink, the crawl:doc_seq counter, and crawl:doc:{id}
// hash writes together, plus the raw:queue handoff to the indexer.
type Writer struct {
	store       storeClient
	sink        RawSink
	docSeqKey   string
	docKey      func(id string) string
	rawQueueKey string
}

func NewWriter(store storeClient, sink RawSink, docSeqKey string, docKey func(string) string, rawQueueKey string) *Writer {
	return &Writer{store: store, sink: sink, docSeqKey: docSeqKey, docKey: docKey, rawQueueKey: rawQueueKey}
}

// Persist stores rawHTML, writes the crawl:doc:{id} record, and pushes id
// onto raw:queue for the indexer to pick up. It returns the newly
// allocated id.
func (w *Writer) Persist(ctx context.Context, rec CrawlDocRecord, rawHTML []byte) (string, error) {
	seq, err := w.store.Incr(ctx, w.docSeqKey)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%d", seq)
	rec.ID = id
	// Fingerprint the raw body so a future re-crawl of the same URL can
	// tell an unchanged page from a changed one without re-parsing it.
	rec.ContentHash, _ = hashutil.HashBytes(rawHTML, hashutil.HashAlgoBLAKE3)

	pointer, err := w.sink.PutRaw(ctx, id, rawHTML)
	if err != nil {
		return "", err
	}
	if _, ok := w.sink.(*ObjectSink); ok {
		rec.RawKey = pointer
	} else {
		rec.RawPath = pointer
	}

	if err := w.store.HashSet(ctx, w.docKey(id), rec.ToHash()); err != nil {
		return "", err
	}
	if err := w.store.PushRight(ctx, w.rawQueueKey, id); err != nil {
		return "", err
	}
	return id, nil
}
