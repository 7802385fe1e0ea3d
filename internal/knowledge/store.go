package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/anshaggr/foliochat/internal/storage"
)

// Embedder generates embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cache persists embeddings across restarts so the fixed corpus is not
// re-embedded on every boot. storage.Store implements it.
type Cache interface {
	GetEmbedding(contentHash, model string) ([]float32, error)
	PutEmbedding(contentHash, model string, embedding []float32) error
}

// Document is one knowledge-base entry. Documents are immutable once added
// and always carry an embedding.
type Document struct {
	ID        string
	Title     string
	Type      string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// ScoredDocument is a Document with its similarity to a query.
type ScoredDocument struct {
	Document
	Score float32
}

// Store is an in-memory document set with brute-force cosine retrieval.
type Store struct {
	mu       sync.RWMutex
	docs     []Document
	embedder Embedder
	cache    Cache // optional; nil disables caching
	model    string
	logger   *slog.Logger
}

// NewStore creates a Store. cache may be nil; model namespaces cache keys
// so switching embedding models invalidates old entries.
func NewStore(embedder Embedder, cache Cache, model string) *Store {
	return &Store{
		embedder: embedder,
		cache:    cache,
		model:    model,
		logger:   slog.Default(),
	}
}

// AddDocument embeds content and stores it. The document is not queryable
// until the embedding succeeds; an embedding failure is propagated and
// nothing is stored.
func (s *Store) AddDocument(ctx context.Context, content, title, docType string) (string, error) {
	embedding, err := s.embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("embedding document %q: %w", title, err)
	}
	return s.add(content, title, docType, embedding), nil
}

func (s *Store) add(content, title, docType string, embedding []float32) string {
	doc := Document{
		ID:        uuid.New().String(),
		Title:     title,
		Type:      docType,
		Content:   content,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.docs = append(s.docs, doc)
	s.mu.Unlock()
	return doc.ID
}

// RetrieveTopK returns the k most similar documents to the query, in
// descending similarity order; ties keep insertion order. Retrieval
// degrades to an empty result when the query cannot be embedded.
func (s *Store) RetrieveTopK(ctx context.Context, query string, k int) []ScoredDocument {
	if k <= 0 {
		return nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed, retrieval degraded to empty", "error", err)
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]ScoredDocument, len(s.docs))
	qNorm := norm(vec)
	for i, doc := range s.docs {
		scored[i] = ScoredDocument{Document: doc, Score: cosine(vec, qNorm, doc.Embedding)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Count returns the number of stored documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Seed loads the built-in corpus. Embeddings are computed concurrently but
// documents are appended in corpus order, keeping retrieval tie-breaks
// deterministic across restarts.
func (s *Store) Seed(ctx context.Context) error {
	embeddings := make([][]float32, len(corpus))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, entry := range corpus {
		g.Go(func() error {
			vec, err := s.embed(gCtx, entry.content)
			if err != nil {
				return fmt.Errorf("embedding %q: %w", entry.title, err)
			}
			embeddings[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, entry := range corpus {
		s.add(entry.content, entry.title, entry.docType, embeddings[i])
	}
	s.logger.Info("knowledge base seeded", "documents", len(corpus))
	return nil
}

// embed returns the embedding for content, consulting the cache first.
func (s *Store) embed(ctx context.Context, content string) ([]float32, error) {
	var hash string
	if s.cache != nil {
		sum := sha256.Sum256([]byte(content))
		hash = hex.EncodeToString(sum[:])
		if vec, err := s.cache.GetEmbedding(hash, s.model); err == nil {
			return vec, nil
		} else if err != storage.ErrNotFound {
			s.logger.Warn("embedding cache read failed", "error", err)
		}
	}

	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.PutEmbedding(hash, s.model, vec); err != nil {
			s.logger.Warn("embedding cache write failed", "error", err)
		}
	}
	return vec, nil
}

// norm returns the L2 norm of a vector.
func norm(v []float32) float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return float32(math.Sqrt(sum))
}

// cosine computes dot(a,b) / (|a||b|) with a's norm precomputed.
func cosine(a []float32, aNorm float32, b []float32) float32 {
	if len(a) != len(b) || aNorm == 0 {
		return 0
	}
	var dot, bNormSq float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		bNormSq += float64(b[i]) * float64(b[i])
	}
	bNorm := math.Sqrt(bNormSq)
	if bNorm == 0 {
		return 0
	}
	return float32(dot / (float64(aNorm) * bNorm))
}
