// Package engine orchestrates corpus loading, similarity scoring, and the
// embedding cache behind a single Detect entry point.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/issuelab/dupscout/internal/cache"
	"github.com/issuelab/dupscout/internal/corpus"
	"github.com/issuelab/dupscout/internal/embedding"
	"github.com/issuelab/dupscout/internal/lexical"
	"github.com/issuelab/dupscout/pkg/models"
)

// phase tracks where a detection request is in its lifecycle. It exists for
// failure reporting and debug logging; transitions are strictly forward.
type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseScoring
	phaseRanking
	phaseDone
	phaseFailed
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseLoading:
		return "loading"
	case phaseScoring:
		return "scoring"
	case phaseRanking:
		return "ranking"
	case phaseDone:
		return "done"
	case phaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailedError is the terminal failure of a detection request, carrying the
// phase that failed as the reason code. The engine never pairs it with a
// partially ranked result set.
type FailedError struct {
	Phase string
	Err   error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("detection failed during %s: %v", e.Phase, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Options bounds engine behavior.
type Options struct {
	// EmbedTimeout caps the semantic path (cache read, embedding, cache
	// write) before the request degrades to lexical. Zero means no bound.
	EmbedTimeout time.Duration
	// PersistRequired makes cache write failures fatal instead of
	// degrading to recompute-without-cache.
	PersistRequired bool
}

// Request is one duplicate detection call.
type Request struct {
	Query      models.Query
	CorpusRef  string
	Threshold  float64 // 0-100
	MaxResults int
	Strategy   models.Strategy
}

// Engine runs duplicate detection requests. All collaborators are injected;
// provider may be nil, in which case semantic requests degrade to lexical.
// Safe for concurrent use.
type Engine struct {
	loader   corpus.Loader
	scorer   *lexical.Scorer
	provider embedding.Provider
	store    *cache.Store
	opts     Options

	// flight serializes embed-and-store per cache key so concurrent misses
	// for the same (signature, model) compute once.
	flight singleflight.Group
}

// New creates an engine.
func New(loader corpus.Loader, scorer *lexical.Scorer, provider embedding.Provider, store *cache.Store, opts Options) *Engine {
	return &Engine{
		loader:   loader,
		scorer:   scorer,
		provider: provider,
		store:    store,
		opts:     opts,
	}
}

// Detect loads the corpus, scores every record against the query with the
// requested strategy, and returns matches above the threshold ordered by
// descending similarity (ties in corpus order), truncated to MaxResults.
func (e *Engine) Detect(ctx context.Context, req Request) (*models.DetectionOutcome, error) {
	if req.Threshold < 0 || req.Threshold > 100 {
		return nil, &FailedError{Phase: phaseIdle.String(), Err: fmt.Errorf("threshold %v out of range [0,100]", req.Threshold)}
	}
	strategy, err := models.ParseStrategy(string(req.Strategy))
	if err != nil {
		return nil, &FailedError{Phase: phaseIdle.String(), Err: err}
	}

	corp, err := e.loader.Load(ctx, req.CorpusRef)
	if err != nil {
		return nil, &FailedError{Phase: phaseLoading.String(), Err: err}
	}

	outcome := &models.DetectionOutcome{
		StrategyUsed: models.StrategyLexical,
		CacheStatus:  models.CacheUnavailable,
	}

	var candidates []models.MatchResult

	if strategy == models.StrategySemantic || strategy == models.StrategyAuto {
		semantic, status, serr := e.scoreSemantic(ctx, corp, req.Query)
		switch {
		case serr == nil:
			candidates = semantic
			outcome.StrategyUsed = models.StrategySemantic
			outcome.CacheStatus = status
		case e.opts.PersistRequired && isCacheWrite(serr):
			return nil, &FailedError{Phase: phaseScoring.String(), Err: serr}
		case ctx.Err() != nil:
			// Caller abandoned the request; do not degrade, report it.
			return nil, &FailedError{Phase: phaseScoring.String(), Err: ctx.Err()}
		default:
			// Recoverable: degrade to lexical, surfaced via StrategyUsed.
			log.Printf("semantic scoring unavailable, degrading to lexical: %v", serr)
		}
	}

	if candidates == nil {
		candidates = e.scoreLexical(corp, req.Query)
	}

	outcome.Matches = rank(candidates, req.Threshold, req.MaxResults)
	return outcome, nil
}

// scoreLexical scores every record in corpus order.
func (e *Engine) scoreLexical(corp *corpus.Corpus, query models.Query) []models.MatchResult {
	results := make([]models.MatchResult, len(corp.Records))
	for i := range corp.Records {
		record := &corp.Records[i]
		results[i] = models.MatchResult{
			Issue:      record,
			Similarity: e.scorer.Score(query, record),
		}
	}
	return results
}

// scoreSemantic resolves corpus vectors through the cache, embeds the
// query, and scores by rescaled cosine similarity.
func (e *Engine) scoreSemantic(ctx context.Context, corp *corpus.Corpus, query models.Query) ([]models.MatchResult, models.CacheStatus, error) {
	if e.provider == nil {
		return nil, models.CacheUnavailable, embedding.ErrUnavailable
	}

	if e.opts.EmbedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.EmbedTimeout)
		defer cancel()
	}

	vectors, status, err := e.corpusVectors(ctx, corp)
	if err != nil {
		return nil, models.CacheUnavailable, err
	}

	queryVec, err := e.provider.Embed(ctx, embedding.PrepareQueryText(query.Title, query.Description))
	if err != nil {
		return nil, models.CacheUnavailable, err
	}

	results := make([]models.MatchResult, len(corp.Records))
	for i := range corp.Records {
		results[i] = models.MatchResult{
			Issue:      &corp.Records[i],
			Similarity: CosineScore(queryVec, vectors[i]),
		}
	}
	return results, status, nil
}

// corpusVectors returns one vector per corpus record, in corpus order.
// Concurrent misses for the same key share a single computation.
func (e *Engine) corpusVectors(ctx context.Context, corp *corpus.Corpus) ([][]float32, models.CacheStatus, error) {
	key := cache.Key{Signature: corp.Signature, Model: e.provider.ModelID()}

	if e.store != nil {
		if entry, ok := e.store.Get(key); ok {
			if vectors := entryVectors(entry, corp); vectors != nil {
				return vectors, models.CacheHit, nil
			}
			// Entry passed integrity checks but does not line up with
			// this corpus; treat as a miss and recompute.
		}
	}

	type computed struct {
		vectors  [][]float32
		writeErr error
	}

	v, err, _ := e.flight.Do(key.EntryID(), func() (interface{}, error) {
		vectors, err := e.embedCorpus(ctx, corp)
		if err != nil {
			return nil, err
		}

		var writeErr error
		if e.store != nil {
			// A cancelled request must not install a partial entry: the
			// vectors are complete here, but respect cancellation before
			// touching the store at all.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			writeErr = e.store.Put(key, &cache.Entry{Vectors: recordVectors(corp, vectors)})
		}
		return computed{vectors: vectors, writeErr: writeErr}, nil
	})
	if err != nil {
		return nil, models.CacheUnavailable, err
	}

	c := v.(computed)
	if c.writeErr != nil {
		if e.opts.PersistRequired {
			return nil, models.CacheUnavailable, c.writeErr
		}
		// Recoverable: the vectors are good, only persistence failed.
		log.Printf("cache write failed, continuing without persistence: %v", c.writeErr)
		return c.vectors, models.CacheUnavailable, nil
	}

	return c.vectors, models.CacheMiss, nil
}

func (e *Engine) embedCorpus(ctx context.Context, corp *corpus.Corpus) ([][]float32, error) {
	texts := make([]string, len(corp.Records))
	for i, r := range corp.Records {
		texts[i] = embedding.PrepareRecordText(r.Title, r.Description, r.LogExcerpt)
	}

	vectors, err := e.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(corp.Records) {
		return nil, fmt.Errorf("%w: provider returned %d vectors for %d records",
			embedding.ErrUnavailable, len(vectors), len(corp.Records))
	}
	return vectors, nil
}

// entryVectors maps a cache entry back onto the corpus, or nil if the entry
// does not cover exactly these records in this order.
func entryVectors(entry *cache.Entry, corp *corpus.Corpus) [][]float32 {
	if len(entry.Vectors) != len(corp.Records) {
		return nil
	}
	vectors := make([][]float32, len(entry.Vectors))
	for i, rv := range entry.Vectors {
		if rv.IssueID != corp.Records[i].ID {
			return nil
		}
		vectors[i] = rv.Vector
	}
	return vectors
}

func recordVectors(corp *corpus.Corpus, vectors [][]float32) []cache.RecordVector {
	rvs := make([]cache.RecordVector, len(vectors))
	for i, v := range vectors {
		rvs[i] = cache.RecordVector{IssueID: corp.Records[i].ID, Vector: v}
	}
	return rvs
}

func isCacheWrite(err error) bool {
	var ioErr *cache.IOError
	return errors.As(err, &ioErr)
}
