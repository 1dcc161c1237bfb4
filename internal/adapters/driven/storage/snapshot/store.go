// Package snapshot implements the knowledge store as in-memory tables
// mirrored to a single versioned JSON file on disk.
//
// Every mutation rewrites the snapshot through a temp-file-and-rename
// sequence, so the artifact on disk is always one committed state and a
// crash mid-write leaves the previous snapshot intact. A snapshot that
// cannot be parsed is set aside at startup and the store starts empty
// instead of failing.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
	"github.com/korpus-labs/korpus-cli/internal/logger"
)

// SnapshotFile is the snapshot's file name inside the data directory.
const SnapshotFile = "knowledge.json"

// schemaVersion is written into every snapshot and checked on load.
// Snapshots declaring any other version are rejected as corrupt rather
// than misread.
const schemaVersion = 1

// Ensure Store implements the interface.
var _ driven.KnowledgeStore = (*Store)(nil)

// Store is the snapshot-backed implementation of driven.KnowledgeStore.
//
// Documents and chunks live in memory and are mirrored to disk after
// every successful mutation. If the mirror write fails, the in-memory
// change is undone before the error is returned, keeping memory and
// disk describing the same committed state.
type Store struct {
	mu   sync.RWMutex
	path string

	dim        int
	docs       map[string]domain.Document
	docOrder   []string
	chunks     map[string]domain.Chunk
	chunkOrder []string
}

// New opens the snapshot store rooted at dataDir, loading the existing
// snapshot if one is present. A missing snapshot yields an empty store.
// A corrupt snapshot is renamed aside with a ".corrupt" suffix and the
// store starts empty, with a warning on stderr.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		path:   filepath.Join(dataDir, SnapshotFile),
		docs:   make(map[string]domain.Document),
		chunks: make(map[string]domain.Chunk),
	}

	if err := s.load(); err != nil {
		if !errors.Is(err, domain.ErrStoreCorruption) {
			return nil, err
		}
		logger.Warn("Snapshot %s is unreadable, starting from an empty store: %v", s.path, err)
		s.reset()
		if renameErr := os.Rename(s.path, s.path+".corrupt"); renameErr != nil && !os.IsNotExist(renameErr) {
			logger.Warn("Could not set aside corrupt snapshot: %v", renameErr)
		}
	}

	return s, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// InsertDocument registers a document in Pending state.
func (s *Store) InsertDocument(_ context.Context, doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[doc.ID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateDocument, doc.ID)
	}

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.Status = domain.StatusPending
	doc.ChunkIDs = nil

	s.docs[doc.ID] = doc
	s.docOrder = append(s.docOrder, doc.ID)

	if err := s.persist(); err != nil {
		delete(s.docs, doc.ID)
		s.docOrder = s.docOrder[:len(s.docOrder)-1]
		return err
	}
	return nil
}

// InsertChunks stores a document's chunks and marks it Indexed. Every
// chunk is validated against the store's embedding dimension before
// anything is mutated; the first batch on an empty store establishes
// the dimension.
func (s *Store) InsertChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to insert", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}
	if len(doc.ChunkIDs) > 0 {
		return fmt.Errorf("%w: document %s already has chunks", domain.ErrInvalidInput, documentID)
	}

	dim := s.dim
	if dim == 0 {
		dim = len(chunks[0].Embedding)
	}

	inserted := make([]domain.Chunk, 0, len(chunks))
	ids := make([]string, 0, len(chunks))
	seen := make(map[string]struct{}, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, i)
		}
		if len(c.Embedding) != dim {
			return fmt.Errorf("%w: chunk %d has dimension %d, store expects %d",
				domain.ErrDimensionMismatch, i, len(c.Embedding), dim)
		}
		if c.DocumentID == "" {
			c.DocumentID = documentID
		}
		if c.DocumentID != documentID {
			return fmt.Errorf("%w: chunk %d belongs to document %q", domain.ErrInvalidInput, i, c.DocumentID)
		}
		if c.ID == "" {
			c.ID = domain.ChunkID(documentID, c.Position)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate chunk id %q in batch", domain.ErrInvalidInput, c.ID)
		}
		if _, exists := s.chunks[c.ID]; exists {
			return fmt.Errorf("%w: chunk id %q already stored", domain.ErrInvalidInput, c.ID)
		}
		seen[c.ID] = struct{}{}
		inserted = append(inserted, c)
		ids = append(ids, c.ID)
	}

	prevDim := s.dim
	prevStatus := doc.Status
	s.dim = dim
	for _, c := range inserted {
		s.chunks[c.ID] = c
		s.chunkOrder = append(s.chunkOrder, c.ID)
	}
	doc.ChunkIDs = ids
	doc.Status = domain.StatusIndexed
	s.docs[documentID] = doc

	if err := s.persist(); err != nil {
		s.dim = prevDim
		for _, id := range ids {
			delete(s.chunks, id)
		}
		s.chunkOrder = s.chunkOrder[:len(s.chunkOrder)-len(ids)]
		doc.ChunkIDs = nil
		doc.Status = prevStatus
		s.docs[documentID] = doc
		return err
	}
	return nil
}

// AttachSummary populates one summary level on a document.
func (s *Store) AttachSummary(_ context.Context, documentID string, level domain.SummaryLevel, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}

	prev := doc.Summaries
	doc.Summaries.Set(level, text)
	s.docs[documentID] = doc

	if err := s.persist(); err != nil {
		doc.Summaries = prev
		s.docs[documentID] = doc
		return err
	}
	return nil
}

// DeleteDocument removes the document and all its chunks, reporting
// whether the document existed.
func (s *Store) DeleteDocument(_ context.Context, documentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return false, nil
	}

	removed := make(map[string]domain.Chunk, len(doc.ChunkIDs))
	for _, id := range doc.ChunkIDs {
		if c, found := s.chunks[id]; found {
			removed[id] = c
			delete(s.chunks, id)
		}
	}

	prevChunkOrder := s.chunkOrder
	if len(removed) > 0 {
		kept := make([]string, 0, len(prevChunkOrder)-len(removed))
		for _, id := range prevChunkOrder {
			if _, gone := removed[id]; !gone {
				kept = append(kept, id)
			}
		}
		s.chunkOrder = kept
	}

	prevDocOrder := s.docOrder
	keptDocs := make([]string, 0, len(prevDocOrder)-1)
	for _, id := range prevDocOrder {
		if id != documentID {
			keptDocs = append(keptDocs, id)
		}
	}
	s.docOrder = keptDocs
	delete(s.docs, documentID)

	if err := s.persist(); err != nil {
		s.docs[documentID] = doc
		s.docOrder = prevDocOrder
		s.chunkOrder = prevChunkOrder
		for id, c := range removed {
			s.chunks[id] = c
		}
		return false, err
	}
	return true, nil
}

// Clear removes all documents and chunks and resets the embedding
// dimension, so the next insert may establish a new one.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevDim := s.dim
	prevDocs, prevDocOrder := s.docs, s.docOrder
	prevChunks, prevChunkOrder := s.chunks, s.chunkOrder

	s.reset()

	if err := s.persist(); err != nil {
		s.dim = prevDim
		s.docs, s.docOrder = prevDocs, prevDocOrder
		s.chunks, s.chunkOrder = prevChunks, prevChunkOrder
		return err
	}
	return nil
}

// GetDocument retrieves a document by id.
func (s *Store) GetDocument(_ context.Context, documentID string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}
	return copyDocument(doc), nil
}

// FindBySourceRef returns the document ingested from the given source
// reference, if any. Documents ingested from raw text have no source
// reference and are never matched.
func (s *Store) FindBySourceRef(_ context.Context, ref string) (domain.Document, bool, error) {
	if ref == "" {
		return domain.Document{}, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.docOrder {
		if doc := s.docs[id]; doc.SourceRef == ref {
			return copyDocument(doc), true, nil
		}
	}
	return domain.Document{}, false, nil
}

// ListDocuments returns all documents in insertion order.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.docOrder))
	for _, id := range s.docOrder {
		docs = append(docs, copyDocument(s.docs[id]))
	}
	return docs, nil
}

// GetChunks retrieves a document's chunks in position order.
func (s *Store) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}

	chunks := make([]domain.Chunk, 0, len(doc.ChunkIDs))
	for _, id := range doc.ChunkIDs {
		if c, found := s.chunks[id]; found {
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}

// AllChunks returns every stored chunk in insertion order. The returned
// chunks share embedding slices with the store; callers must treat them
// as read-only.
func (s *Store) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := make([]domain.Chunk, 0, len(s.chunkOrder))
	for _, id := range s.chunkOrder {
		chunks = append(chunks, s.chunks[id])
	}
	return chunks, nil
}

// Stats returns document and chunk counts, the established embedding
// dimension, and the snapshot's size on disk.
func (s *Store) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.StoreStats{
		DocumentCount: len(s.docOrder),
		ChunkCount:    len(s.chunkOrder),
		EmbeddingDim:  s.dim,
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.StorageBytes = info.Size()
	}
	return stats, nil
}

// Save rewrites the snapshot from the current in-memory state.
// Mutations already persist synchronously; Save exists for callers that
// want an explicit flush point.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

// Close releases resources. Every mutation persists synchronously, so
// there is no pending state to flush.
func (s *Store) Close() error {
	return nil
}

func (s *Store) reset() {
	s.dim = 0
	s.docs = make(map[string]domain.Document)
	s.docOrder = nil
	s.chunks = make(map[string]domain.Chunk)
	s.chunkOrder = nil
}

// load reads the snapshot from disk into the in-memory tables. A
// missing file is not an error. Parse failures, version mismatches,
// and referential inconsistencies are reported as ErrStoreCorruption.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: parsing snapshot: %v", domain.ErrStoreCorruption, err)
	}
	if snap.Version != schemaVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", domain.ErrStoreCorruption, snap.Version)
	}
	return s.restore(snap)
}

// restore rebuilds the in-memory tables from a parsed snapshot,
// verifying ids are unique and every reference resolves.
func (s *Store) restore(snap snapshotFile) error {
	docs := make(map[string]domain.Document, len(snap.Documents))
	docOrder := make([]string, 0, len(snap.Documents))
	for _, rec := range snap.Documents {
		if rec.ID == "" {
			return fmt.Errorf("%w: document with empty id", domain.ErrStoreCorruption)
		}
		if _, dup := docs[rec.ID]; dup {
			return fmt.Errorf("%w: duplicate document id %q", domain.ErrStoreCorruption, rec.ID)
		}
		docs[rec.ID] = rec.toDomain()
		docOrder = append(docOrder, rec.ID)
	}

	chunks := make(map[string]domain.Chunk, len(snap.Chunks))
	chunkOrder := make([]string, 0, len(snap.Chunks))
	for _, rec := range snap.Chunks {
		if _, ok := docs[rec.DocumentID]; !ok {
			return fmt.Errorf("%w: chunk %q references unknown document %q",
				domain.ErrStoreCorruption, rec.ID, rec.DocumentID)
		}
		if _, dup := chunks[rec.ID]; dup {
			return fmt.Errorf("%w: duplicate chunk id %q", domain.ErrStoreCorruption, rec.ID)
		}
		if snap.EmbeddingDim > 0 && len(rec.Embedding) != snap.EmbeddingDim {
			return fmt.Errorf("%w: chunk %q has dimension %d, snapshot declares %d",
				domain.ErrStoreCorruption, rec.ID, len(rec.Embedding), snap.EmbeddingDim)
		}
		chunks[rec.ID] = rec.toDomain()
		chunkOrder = append(chunkOrder, rec.ID)
	}

	for _, id := range docOrder {
		for _, chunkID := range docs[id].ChunkIDs {
			if _, ok := chunks[chunkID]; !ok {
				return fmt.Errorf("%w: document %q lists missing chunk %q",
					domain.ErrStoreCorruption, id, chunkID)
			}
		}
	}

	s.dim = snap.EmbeddingDim
	s.docs = docs
	s.docOrder = docOrder
	s.chunks = chunks
	s.chunkOrder = chunkOrder
	return nil
}

// persist writes the current state to a temp file in the data
// directory and renames it over the snapshot. Callers must hold the
// write lock.
func (s *Store) persist() error {
	data, err := json.Marshal(s.buildSnapshot())
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".knowledge-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

func (s *Store) buildSnapshot() snapshotFile {
	snap := snapshotFile{
		Version:      schemaVersion,
		EmbeddingDim: s.dim,
		SavedAt:      time.Now().UTC(),
		Documents:    make([]documentRecord, 0, len(s.docOrder)),
		Chunks:       make([]chunkRecord, 0, len(s.chunkOrder)),
	}
	for _, id := range s.docOrder {
		snap.Documents = append(snap.Documents, newDocumentRecord(s.docs[id]))
	}
	for _, id := range s.chunkOrder {
		snap.Chunks = append(snap.Chunks, newChunkRecord(s.chunks[id]))
	}
	return snap
}

func copyDocument(doc domain.Document) domain.Document {
	if len(doc.ChunkIDs) > 0 {
		doc.ChunkIDs = append([]string(nil), doc.ChunkIDs...)
	}
	return doc
}

// snapshotFile is the on-disk schema. Domain types are not serialized
// directly so the artifact keeps a stable shape independent of domain
// refactors.
type snapshotFile struct {
	Version      int              `json:"version"`
	EmbeddingDim int              `json:"embedding_dim"`
	SavedAt      time.Time        `json:"saved_at"`
	Documents    []documentRecord `json:"documents"`
	Chunks       []chunkRecord    `json:"chunks"`
}

type documentRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SourceKind string    `json:"source_kind"`
	SourceRef  string    `json:"source_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ChunkIDs   []string  `json:"chunk_ids,omitempty"`
	Quick      string    `json:"summary_quick,omitempty"`
	Standard   string    `json:"summary_standard,omitempty"`
	Detailed   string    `json:"summary_detailed,omitempty"`
	Status     string    `json:"status"`
}

func newDocumentRecord(doc domain.Document) documentRecord {
	return documentRecord{
		ID:         doc.ID,
		Title:      doc.Title,
		SourceKind: string(doc.SourceKind),
		SourceRef:  doc.SourceRef,
		CreatedAt:  doc.CreatedAt,
		ChunkIDs:   doc.ChunkIDs,
		Quick:      doc.Summaries.Quick,
		Standard:   doc.Summaries.Standard,
		Detailed:   doc.Summaries.Detailed,
		Status:     string(doc.Status),
	}
}

func (r documentRecord) toDomain() domain.Document {
	return domain.Document{
		ID:         r.ID,
		Title:      r.Title,
		SourceKind: domain.SourceKind(r.SourceKind),
		SourceRef:  r.SourceRef,
		CreatedAt:  r.CreatedAt,
		ChunkIDs:   r.ChunkIDs,
		Summaries: domain.Summaries{
			Quick:    r.Quick,
			Standard: r.Standard,
			Detailed: r.Detailed,
		},
		Status: domain.DocumentStatus(r.Status),
	}
}

type chunkRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Position   int       `json:"position"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}

func newChunkRecord(c domain.Chunk) chunkRecord {
	return chunkRecord{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Position:   c.Position,
		Text:       c.Text,
		Embedding:  c.Embedding,
	}
}

func (r chunkRecord) toDomain() domain.Chunk {
	return domain.Chunk{
		ID:         r.ID,
		DocumentID: r.DocumentID,
		Position:   r.Position,
		Text:       r.Text,
		Embedding:  r.Embedding,
	}
}
