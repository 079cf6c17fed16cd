package domain

import "time"

// Roles for conversation turns and assembled prompt messages. Only
// user and assistant turns are ever persisted; system is used when
// building prompts.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single entry in a persona's append-only conversation log.
// Turns are never mutated; ordering by CreatedAt (then sequence) is the
// canonical conversation order.
type Turn struct {
	// Seq is the monotonically increasing log sequence number, assigned
	// by the message store. It breaks ties between equal timestamps.
	Seq int64

	// PersonaID links to the owning Persona.
	PersonaID string

	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string

	// CreatedAt is when the turn was appended.
	CreatedAt time.Time
}

// WindowTurns returns the most recent k exchanges from an ordered turn
// sequence. An exchange is one user turn plus its following assistant
// turn; a trailing user turn without an answer counts as an exchange.
// The result preserves order (oldest first).
func WindowTurns(turns []Turn, k int) []Turn {
	if k <= 0 || len(turns) == 0 {
		return nil
	}

	// Walk backwards counting user turns; each user turn starts an exchange.
	exchanges := 0
	start := 0
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleUser {
			exchanges++
			if exchanges == k {
				start = i
				break
			}
		}
	}
	return turns[start:]
}
