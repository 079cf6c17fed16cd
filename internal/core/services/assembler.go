package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driven"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 4

// insufficientContextInstruction tells the model how to answer when
// the retrieved context does not cover the question.
const insufficientContextInstruction = `Aşağıdaki bağlamı kullanarak kullanıcının sorusunu yanıtla.
Eğer soruyu bağlamdan yanıtlayamıyorsan, "Verilen bağlamda bu soruyu yanıtlayacak yeterli bilgi bulunmamaktadır." diye belirt ve başka bir cevap üretme.`

// generalKnowledgeInstruction replaces the context instruction when the
// persona has no indexed documents yet.
const generalKnowledgeInstruction = `Henüz yüklenmiş bir belge yok. Kullanıcının sorusunu genel bilginle, karakterinin sınırları içinde yanıtla.`

// greetingWords is the lexical set for small-talk classification. A
// query whose words all appear here skips retrieval entirely.
var greetingWords = map[string]struct{}{
	"merhaba":     {},
	"selam":       {},
	"selamlar":    {},
	"nasılsın":    {},
	"nasilsin":    {},
	"naber":       {},
	"günaydın":    {},
	"gunaydin":    {},
	"iyi":         {},
	"akşamlar":    {},
	"aksamlar":    {},
	"günler":      {},
	"gunler":      {},
	"geceler":     {},
	"görüşürüz":   {},
	"teşekkürler": {},
	"teşekkür":    {},
	"ederim":      {},
	"sağol":       {},
	"hello":       {},
	"hi":          {},
	"hey":         {},
	"good":        {},
	"morning":     {},
	"evening":     {},
	"thanks":      {},
	"bye":         {},
}

// PromptAssembler builds the message sequence for one query: boundary
// frame, memory window, retrieved context, query.
type PromptAssembler struct {
	chunkStore driven.ChunkStore
	embedder   driven.EmbeddingService
	indexes    driven.VectorIndexProvider
	topK       int
}

// NewPromptAssembler creates a new prompt assembler.
func NewPromptAssembler(
	chunkStore driven.ChunkStore,
	embedder driven.EmbeddingService,
	indexes driven.VectorIndexProvider,
	topK int,
) *PromptAssembler {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &PromptAssembler{
		chunkStore: chunkStore,
		embedder:   embedder,
		indexes:    indexes,
		topK:       topK,
	}
}

// Assemble builds the ordered message sequence for a query. The
// boundary system message is always first, whether or not retrieval
// fires.
func (a *PromptAssembler) Assemble(ctx context.Context, persona *domain.Persona, query string, memory []domain.Turn) ([]driven.ChatMessage, error) {
	var contextBlock string
	retrieved := false

	if !IsGreeting(query) {
		block, hit, err := a.retrieve(ctx, persona.ID, query)
		if err != nil {
			return nil, err
		}
		contextBlock = block
		retrieved = hit
	} else {
		logger.Debug("Query classified as small talk, skipping retrieval")
	}

	messages := []driven.ChatMessage{{
		Role:    domain.RoleSystem,
		Content: a.systemMessage(persona, retrieved),
	}}

	for _, turn := range memory {
		messages = append(messages, driven.ChatMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	if contextBlock != "" {
		messages = append(messages, driven.ChatMessage{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("Yanıt verirken referans alman için bağlam:\n\n%s", contextBlock),
		})
	}

	messages = append(messages, driven.ChatMessage{
		Role:    domain.RoleUser,
		Content: query,
	})

	return messages, nil
}

// retrieve searches the persona's index and joins the matched chunk
// texts, in result order, into one context block. An empty index is
// not an error: the persona answers from general knowledge.
func (a *PromptAssembler) retrieve(ctx context.Context, personaID, query string) (string, bool, error) {
	index, err := a.indexes.AcquireRead(ctx, personaID)
	if err != nil {
		return "", false, err
	}
	defer index.Release()

	if index.IsEmpty() {
		logger.Debug("Persona %s has an empty index, general-knowledge mode", personaID)
		return "", false, nil
	}

	embedding, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return "", false, fmt.Errorf("embedding query: %w", err)
	}

	hits := index.Search(embedding, a.topK)

	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		chunk, err := a.chunkStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Stale vector from a detached document; dropped until
				// the next reindex.
				continue
			}
			return "", false, fmt.Errorf("loading chunk %s: %w", hit.ChunkID, err)
		}
		texts = append(texts, chunk.Content)
	}
	if len(texts) == 0 {
		return "", false, nil
	}

	return strings.Join(texts, "\n\n"), true, nil
}

// systemMessage builds the controlling directive: persona frame,
// boundary text, and the mode-appropriate answering instruction.
func (a *PromptAssembler) systemMessage(persona *domain.Persona, retrieved bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Sen bir chatbot'sun. '%s' isimli bir karakteri veya bilgi alanını temsil ediyorsun.", persona.Name)
	if persona.Description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(persona.Description)
	}
	if persona.BoundaryText != "" {
		sb.WriteString("\n\n")
		sb.WriteString(persona.BoundaryText)
	}
	sb.WriteString("\n\n")
	if retrieved {
		sb.WriteString(insufficientContextInstruction)
	} else {
		sb.WriteString(generalKnowledgeInstruction)
	}
	return sb.String()
}

// IsGreeting reports whether the query is conversational small talk.
// Each word is lowercased and trimmed of punctuation; the query
// classifies as a greeting only when every word is a greeting word.
func IsGreeting(query string) bool {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		word = strings.Trim(word, ".,!?;:'\"()")
		if word == "" {
			continue
		}
		if _, ok := greetingWords[word]; !ok {
			return false
		}
	}
	return true
}
