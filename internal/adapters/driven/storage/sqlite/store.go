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
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// persona, chunk and message store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.chatbot-demo/data/chatbot.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".chatbot-demo", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chatbot.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys so persona deletion cascades to documents,
	// chunks and messages
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// PersonaStore returns a PersonaStore interface backed by this store.
func (s *Store) PersonaStore() driven.PersonaStore {
	return &personaStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// MessageStore returns a MessageStore interface backed by this store.
func (s *Store) MessageStore() driven.MessageStore {
	return &messageStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
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
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ==================== Persona Store ====================

// personaStore implements driven.PersonaStore.
type personaStore struct {
	store *Store
}

var _ driven.PersonaStore = (*personaStore)(nil)

// Save stores a new persona.
func (s *personaStore) Save(ctx context.Context, p *domain.Persona) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO personas (id, name, description, boundary_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.BoundaryText, p.CreatedAt, p.UpdatedAt)

	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("saving persona: %w", err)
	}
	return nil
}

// Get retrieves a persona by ID.
func (s *personaStore) Get(ctx context.Context, id string) (*domain.Persona, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, boundary_text, created_at, updated_at
		FROM personas WHERE id = ?
	`, id)
	return scanPersona(row)
}

// List returns all personas ordered by name.
func (s *personaStore) List(ctx context.Context) ([]domain.Persona, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, description, boundary_text, created_at, updated_at
		FROM personas ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying personas: %w", err)
	}
	defer rows.Close()

	var personas []domain.Persona //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Persona
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.BoundaryText, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning persona: %w", err)
		}
		if createdAt.Valid {
			p.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			p.UpdatedAt = updatedAt.Time
		}
		personas = append(personas, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating personas: %w", err)
	}
	return personas, nil
}

// Update modifies an existing persona.
func (s *personaStore) Update(ctx context.Context, p *domain.Persona) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE personas SET name = ?, description = ?, boundary_text = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Description, p.BoundaryText, p.UpdatedAt, p.ID)

	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("updating persona: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating persona: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a persona. Documents, chunks and messages cascade.
func (s *personaStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM personas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting persona: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting persona: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPersona(row *sql.Row) (*domain.Persona, error) {
	var p domain.Persona
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.BoundaryText, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning persona: %w", err)
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveDocument stores a document row and its chunks in one transaction.
// beforeCommit runs after all rows are written; returning an error
// aborts the transaction. The ingestion pipeline persists the vector
// index there, so a chunk row never outlives a failed index update.
func (s *chunkStore) SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk, beforeCommit func() error) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, persona_id, filename, created_at)
		VALUES (?, ?, ?, ?)
	`, doc.ID, doc.PersonaID, doc.Filename, doc.CreatedAt); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, persona_id, content, position, page, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.PersonaID,
			chunk.Content, chunk.Position, chunk.Page, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if beforeCommit != nil {
		if err := beforeCommit(); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListDocuments returns listings of all files ingested for a persona.
func (s *chunkStore) ListDocuments(ctx context.Context, personaID string) ([]domain.DocumentListing, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT d.id, d.filename, d.created_at, COUNT(c.id)
		FROM documents d
		LEFT JOIN chunks c ON c.document_id = d.id
		WHERE d.persona_id = ?
		GROUP BY d.id, d.filename, d.created_at
		ORDER BY d.filename, d.created_at
	`, personaID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var listings []domain.DocumentListing //nolint:prealloc // size unknown from query
	for rows.Next() {
		var l domain.DocumentListing
		var createdAt sql.NullTime
		if err := rows.Scan(&l.DocumentID, &l.Filename, &createdAt, &l.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning document listing: %w", err)
		}
		if createdAt.Valid {
			l.CreatedAt = createdAt.Time
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return listings, nil
}

// GetChunk retrieves a chunk by ID.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, persona_id, content, position, page, embedding
		FROM chunks WHERE id = ?
	`, id)

	var chunk domain.Chunk
	var embeddingBlob []byte
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.PersonaID,
		&chunk.Content, &chunk.Position, &chunk.Page, &embeddingBlob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return &chunk, nil
}

// GetPersonaChunks returns all chunks for a persona in ingestion
// order: by document creation time, then position within the document.
func (s *chunkStore) GetPersonaChunks(ctx context.Context, personaID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.persona_id, c.content, c.position, c.page, c.embedding
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.persona_id = ?
		ORDER BY d.created_at, d.id, c.position
	`, personaID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.PersonaID,
			&chunk.Content, &chunk.Position, &chunk.Page, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// DeleteByFilename removes all documents a file contributed to a
// persona. Chunks cascade with the document rows.
func (s *chunkStore) DeleteByFilename(ctx context.Context, personaID, filename string) error {
	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM documents WHERE persona_id = ? AND filename = ?
	`, personaID, filename)
	if err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Message Store ====================

// messageStore implements driven.MessageStore.
type messageStore struct {
	store *Store
}

var _ driven.MessageStore = (*messageStore)(nil)

// Append durably writes one conversation turn.
func (s *messageStore) Append(ctx context.Context, t *domain.Turn) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO messages (persona_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`, t.PersonaID, t.Role, t.Content, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}

	seq, err := res.LastInsertId()
	if err == nil {
		t.Seq = seq
	}
	return nil
}

// List returns all turns for a persona, oldest first. The sequence
// column breaks ties between equal timestamps.
func (s *messageStore) List(ctx context.Context, personaID string) ([]domain.Turn, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, persona_id, role, content, created_at
		FROM messages WHERE persona_id = ?
		ORDER BY created_at, id
	`, personaID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.Turn
		var createdAt sql.NullTime
		if err := rows.Scan(&t.Seq, &t.PersonaID, &t.Role, &t.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if createdAt.Valid {
			t.CreatedAt = createdAt.Time
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return turns, nil
}

// ==================== Embedding encoding ====================

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
