package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/korpus-labs/korpus-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
	"github.com/korpus-labs/korpus-cli/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "knowledge.db"

// metaKeyDim is the store_meta key holding the established embedding
// dimension.
const metaKeyDim = "embedding_dim"

// Ensure Store implements the interface.
var _ driven.KnowledgeStore = (*Store)(nil)

// Store is the SQLite-backed implementation of driven.KnowledgeStore.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the knowledge database under dataDir and runs
// any pending migrations.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL mode for better concurrency, busy timeout so competing
	// writers queue instead of failing.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial_schema.up.sql" -> 1).
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// InsertDocument registers a document in Pending state.
func (s *Store) InsertDocument(ctx context.Context, doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE id = ?", doc.ID).Scan(&count); err != nil {
		return fmt.Errorf("checking for existing document: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateDocument, doc.ID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, source_kind, source_ref, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, string(doc.SourceKind), doc.SourceRef, doc.CreatedAt, string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// InsertChunks stores a document's chunks in one transaction and marks
// the document Indexed. Every chunk is validated against the store's
// embedding dimension before any row is written; the first batch on an
// empty store establishes the dimension.
func (s *Store) InsertChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to insert", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var status string
	err = tx.QueryRowContext(ctx, "SELECT status FROM documents WHERE id = ?", documentID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	var existing int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID).Scan(&existing); err != nil {
		return fmt.Errorf("checking for existing chunks: %w", err)
	}
	if existing > 0 {
		return fmt.Errorf("%w: document %s already has chunks", domain.ErrInvalidInput, documentID)
	}

	dim, ok, err := metaInt(ctx, tx, metaKeyDim)
	if err != nil {
		return err
	}
	if !ok || dim == 0 {
		dim = len(chunks[0].Embedding)
	}

	validated := make([]domain.Chunk, 0, len(chunks))
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
		seen[c.ID] = struct{}{}
		validated = append(validated, c)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range validated {
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Position, c.Text,
			float32SliceToBytes(c.Embedding)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := setMetaInt(ctx, tx, metaKeyDim, dim); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE documents SET status = ? WHERE id = ?",
		string(domain.StatusIndexed), documentID); err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AttachSummary populates one summary level on a document.
func (s *Store) AttachSummary(ctx context.Context, documentID string, level domain.SummaryLevel, text string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET "+summaryColumn(level)+" = ? WHERE id = ?", text, documentID)
	if err != nil {
		return fmt.Errorf("updating summary: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}
	return nil
}

// DeleteDocument removes the document; its chunks follow via the
// cascading foreign key. Reports whether the document existed.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID)
	if err != nil {
		return false, fmt.Errorf("deleting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes all documents and chunks and resets the embedding
// dimension to unset.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		"DELETE FROM chunks",
		"DELETE FROM documents",
		"DELETE FROM store_meta WHERE key = '" + metaKeyDim + "'",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by id, including its chunk ids in
// position order.
func (s *Store) GetDocument(ctx context.Context, documentID string) (domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, source_kind, source_ref, created_at, status,
		       summary_quick, summary_standard, summary_detailed
		FROM documents WHERE id = ?
	`, documentID)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("scanning document: %w", err)
	}

	doc.ChunkIDs, err = s.chunkIDs(ctx, documentID)
	if err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// FindBySourceRef returns the document ingested from the given source
// reference, if any. The empty reference never matches.
func (s *Store) FindBySourceRef(ctx context.Context, ref string) (domain.Document, bool, error) {
	if ref == "" {
		return domain.Document{}, false, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, source_kind, source_ref, created_at, status,
		       summary_quick, summary_standard, summary_detailed
		FROM documents WHERE source_ref = ?
		ORDER BY seq LIMIT 1
	`, ref)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, false, nil
	}
	if err != nil {
		return domain.Document{}, false, fmt.Errorf("scanning document: %w", err)
	}

	doc.ChunkIDs, err = s.chunkIDs(ctx, doc.ID)
	if err != nil {
		return domain.Document{}, false, err
	}
	return doc, true, nil
}

// ListDocuments returns all documents in insertion order.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, source_kind, source_ref, created_at, status,
		       summary_quick, summary_standard, summary_detailed
		FROM documents ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	idsByDoc, err := s.allChunkIDs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].ChunkIDs = idsByDoc[docs[i].ID]
	}
	return docs, nil
}

// GetChunks retrieves a document's chunks in position order.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE id = ?", documentID).Scan(&count); err != nil {
		return nil, fmt.Errorf("checking document: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDocument, documentID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, position, content, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// AllChunks returns every stored chunk in insertion order, for
// retrieval scans.
func (s *Store) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, position, content, embedding
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// Stats returns document and chunk counts, the established embedding
// dimension, and the database size on disk.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&stats.DocumentCount); err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&stats.ChunkCount); err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting chunks: %w", err)
	}

	var dimValue string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", metaKeyDim).Scan(&dimValue)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.StoreStats{}, fmt.Errorf("reading store metadata: %w", err)
	}
	if err == nil {
		if stats.EmbeddingDim, err = strconv.Atoi(dimValue); err != nil {
			return domain.StoreStats{}, fmt.Errorf("%w: invalid %s metadata %q",
				domain.ErrStoreCorruption, metaKeyDim, dimValue)
		}
	}

	// WAL keeps pages outside the main file, so size the database from
	// its page accounting rather than os.Stat.
	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return domain.StoreStats{}, fmt.Errorf("reading page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return domain.StoreStats{}, fmt.Errorf("reading page size: %w", err)
	}
	stats.StorageBytes = pageCount * pageSize
	return stats, nil
}

// chunkIDs returns a document's chunk ids in position order.
func (s *Store) chunkIDs(ctx context.Context, documentID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY position", documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk ids: %w", err)
	}
	return ids, nil
}

// allChunkIDs returns every document's chunk ids, position-ordered.
func (s *Store) allChunkIDs(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT document_id, id FROM chunks ORDER BY document_id, position")
	if err != nil {
		return nil, fmt.Errorf("querying chunk ids: %w", err)
	}
	defer rows.Close()

	byDoc := make(map[string][]string)
	for rows.Next() {
		var docID, id string
		if err := rows.Scan(&docID, &id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		byDoc[docID] = append(byDoc[docID], id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk ids: %w", err)
	}
	return byDoc, nil
}

// ==================== Helper Functions ====================

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var doc domain.Document
	var kind, status string

	if err := row.Scan(&doc.ID, &doc.Title, &kind, &doc.SourceRef, &doc.CreatedAt, &status,
		&doc.Summaries.Quick, &doc.Summaries.Standard, &doc.Summaries.Detailed); err != nil {
		return domain.Document{}, err
	}

	doc.SourceKind = domain.SourceKind(kind)
	doc.Status = domain.DocumentStatus(status)
	return doc, nil
}

func collectChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Position, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

func summaryColumn(level domain.SummaryLevel) string {
	switch level {
	case domain.SummaryQuick:
		return "summary_quick"
	case domain.SummaryDetailed:
		return "summary_detailed"
	default:
		return "summary_standard"
	}
}

func metaInt(ctx context.Context, tx *sql.Tx, key string) (int, bool, error) {
	var value string
	err := tx.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading store metadata: %w", err)
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%w: invalid %s metadata %q", domain.ErrStoreCorruption, key, value)
	}
	return n, true, nil
}

func setMetaInt(ctx context.Context, tx *sql.Tx, key string, n int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO store_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, strconv.Itoa(n))
	if err != nil {
		return fmt.Errorf("writing store metadata: %w", err)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
