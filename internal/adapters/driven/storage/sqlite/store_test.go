package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testPersona(t *testing.T, store *Store) *domain.Persona {
	t.Helper()
	p := &domain.Persona{
		ID:           uuid.NewString(),
		Name:         "destek-" + uuid.NewString()[:8],
		Description:  "Müşteri destek asistanı",
		BoundaryText: "Sadece ürün sorularına cevap ver.",
	}
	require.NoError(t, store.PersonaStore().Save(context.Background(), p))
	return p
}

func TestPersonaStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)

	got, err := store.PersonaStore().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Description, got.Description)
	assert.Equal(t, p.BoundaryText, got.BoundaryText)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestPersonaStore_Get_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.PersonaStore().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPersonaStore_Save_DuplicateName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)

	dup := &domain.Persona{ID: uuid.NewString(), Name: p.Name}
	err := store.PersonaStore().Save(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestPersonaStore_List_OrderedByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alfa", "orta"} {
		p := &domain.Persona{ID: uuid.NewString(), Name: name}
		require.NoError(t, store.PersonaStore().Save(ctx, p))
	}

	personas, err := store.PersonaStore().List(ctx)
	require.NoError(t, err)
	require.Len(t, personas, 3)
	assert.Equal(t, "alfa", personas[0].Name)
	assert.Equal(t, "orta", personas[1].Name)
	assert.Equal(t, "zeta", personas[2].Name)
}

func TestPersonaStore_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)
	p.Description = "güncellendi"
	p.BoundaryText = "Yeni sınır metni."
	require.NoError(t, store.PersonaStore().Update(ctx, p))

	got, err := store.PersonaStore().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "güncellendi", got.Description)
	assert.Equal(t, "Yeni sınır metni.", got.BoundaryText)
}

func TestPersonaStore_Update_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.PersonaStore().Update(context.Background(), &domain.Persona{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPersonaStore_Delete_CascadesToDocumentsAndMessages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)
	saveTestDocument(t, store, p.ID, "kilavuz.txt", 2)
	require.NoError(t, store.MessageStore().Append(ctx, &domain.Turn{
		PersonaID: p.ID, Role: domain.RoleUser, Content: "merhaba",
	}))

	require.NoError(t, store.PersonaStore().Delete(ctx, p.ID))

	docs, err := store.ChunkStore().ListDocuments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	chunks, err := store.ChunkStore().GetPersonaChunks(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	turns, err := store.MessageStore().List(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestPersonaStore_Delete_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.PersonaStore().Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func saveTestDocument(t *testing.T, store *Store, personaID, filename string, chunkCount int) *domain.Document {
	t.Helper()
	doc := &domain.Document{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		Filename:  filename,
	}
	chunks := make([]domain.Chunk, chunkCount)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			PersonaID:  personaID,
			Content:    "içerik parçası",
			Position:   i,
			Page:       1,
			Embedding:  []float32{float32(i), 0.5, -1.25},
		}
	}
	require.NoError(t, store.ChunkStore().SaveDocument(context.Background(), doc, chunks, nil))
	return doc
}

func TestChunkStore_SaveDocument_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)
	doc := saveTestDocument(t, store, p.ID, "kilavuz.txt", 3)

	chunks, err := store.ChunkStore().GetPersonaChunks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		assert.Equal(t, doc.ID, chunk.DocumentID)
		assert.Equal(t, []float32{float32(i), 0.5, -1.25}, chunk.Embedding)
	}
}

func TestChunkStore_SaveDocument_BeforeCommitFailureRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)
	doc := &domain.Document{ID: uuid.NewString(), PersonaID: p.ID, Filename: "bozuk.txt"}
	chunks := []domain.Chunk{{
		ID: uuid.NewString(), DocumentID: doc.ID, PersonaID: p.ID,
		Content: "x", Position: 0, Page: 1,
	}}

	persistErr := errors.New("persist failed")
	err := store.ChunkStore().SaveDocument(ctx, doc, chunks, func() error {
		return persistErr
	})
	require.ErrorIs(t, err, persistErr)

	docs, err := store.ChunkStore().ListDocuments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestChunkStore_ListDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)
	saveTestDocument(t, store, p.ID, "a.txt", 2)
	saveTestDocument(t, store, p.ID, "b.md", 5)

	listings, err := store.ChunkStore().ListDocuments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "a.txt", listings[0].Filename)
	assert.Equal(t, 2, listings[0].ChunkCount)
	assert.Equal(t, "b.md", listings[1].Filename)
	assert.Equal(t, 5, listings[1].ChunkCount)
}

func TestChunkStore_GetChunk(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)
	saveTestDocument(t, store, p.ID, "a.txt", 1)

	chunks, err := store.ChunkStore().GetPersonaChunks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	got, err := store.ChunkStore().GetChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, chunks[0].Content, got.Content)
	assert.Equal(t, chunks[0].Embedding, got.Embedding)

	_, err = store.ChunkStore().GetChunk(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkStore_DeleteByFilename(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)
	saveTestDocument(t, store, p.ID, "sil.txt", 2)
	saveTestDocument(t, store, p.ID, "kalsin.txt", 1)

	require.NoError(t, store.ChunkStore().DeleteByFilename(ctx, p.ID, "sil.txt"))

	listings, err := store.ChunkStore().ListDocuments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "kalsin.txt", listings[0].Filename)

	chunks, err := store.ChunkStore().GetPersonaChunks(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestChunkStore_DeleteByFilename_NotFound(t *testing.T) {
	store := newTestStore(t)

	p := testPersona(t, store)
	err := store.ChunkStore().DeleteByFilename(context.Background(), p.ID, "yok.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessageStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPersona(t, store)

	base := time.Now().UTC().Truncate(time.Second)
	turns := []*domain.Turn{
		{PersonaID: p.ID, Role: domain.RoleUser, Content: "merhaba", CreatedAt: base},
		{PersonaID: p.ID, Role: domain.RoleAssistant, Content: "Merhaba! Size nasıl yardımcı olabilirim?", CreatedAt: base},
		{PersonaID: p.ID, Role: domain.RoleUser, Content: "iade nasıl yapılır", CreatedAt: base.Add(time.Second)},
	}
	for _, turn := range turns {
		require.NoError(t, store.MessageStore().Append(ctx, turn))
	}

	got, err := store.MessageStore().List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// equal timestamps must preserve append order via the sequence column
	assert.Equal(t, "merhaba", got[0].Content)
	assert.Equal(t, domain.RoleAssistant, got[1].Role)
	assert.Equal(t, "iade nasıl yapılır", got[2].Content)
	assert.Greater(t, got[1].Seq, got[0].Seq)
}

func TestMessageStore_List_IsolatedPerPersona(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p1 := testPersona(t, store)
	p2 := testPersona(t, store)

	require.NoError(t, store.MessageStore().Append(ctx, &domain.Turn{
		PersonaID: p1.ID, Role: domain.RoleUser, Content: "birinci",
	}))
	require.NoError(t, store.MessageStore().Append(ctx, &domain.Turn{
		PersonaID: p2.ID, Role: domain.RoleUser, Content: "ikinci",
	}))

	got, err := store.MessageStore().List(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "birinci", got[0].Content)
}

func TestFloat32SliceRoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
