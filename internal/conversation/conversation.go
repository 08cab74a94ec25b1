// Package conversation builds message sequences that satisfy the Perplexity
// chat API requirements: optional system messages first, then strictly
// alternating user/assistant turns, ending on a user message.
package conversation

// Role tags the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the three recognized roles.
// Requests carrying any other tag are rejected at the HTTP boundary.
func (r Role) Valid() bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

// Message is a single conversational turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// placeholderContent opens the conversation when history starts with an
// assistant turn, so alternation can begin on user.
const placeholderContent = "Hello, I'd like to continue our conversation."

// Normalize rewrites an arbitrary history plus a new query into a sequence
// the upstream accepts. System messages keep their relative order at the
// front and are never merged. Remaining messages are repaired to strict
// user/assistant alternation. The query always becomes the final user
// message, replacing a trailing user message if one is present.
//
// Normalize is pure: it never mutates history and always succeeds.
func Normalize(history []Message, query string) []Message {
	var systems, turns []Message
	for _, m := range history {
		if m.Role == RoleSystem {
			systems = append(systems, m)
		} else {
			turns = append(turns, m)
		}
	}

	turns = repairAlternation(turns)

	out := make([]Message, 0, len(systems)+len(turns)+1)
	out = append(out, systems...)
	out = append(out, turns...)

	if n := len(out); n > 0 && out[n-1].Role == RoleUser {
		out[n-1].Content = query
	} else {
		out = append(out, Message{Role: RoleUser, Content: query})
	}
	return out
}

// repairAlternation collapses runs of same-role messages by appending the
// content of each duplicate to the preceding kept turn, separated by a blank
// line. Content is merged, never dropped. If the repaired sequence would
// start with an assistant turn, a placeholder user turn is prepended.
func repairAlternation(turns []Message) []Message {
	if len(turns) == 0 {
		return nil
	}

	var kept []Message
	var last Role
	for _, m := range turns {
		if last == "" || m.Role != last {
			kept = append(kept, m)
			last = m.Role
			continue
		}
		kept[len(kept)-1].Content += "\n\n" + m.Content
	}

	if kept[0].Role == RoleAssistant {
		kept = append([]Message{{Role: RoleUser, Content: placeholderContent}}, kept...)
	}
	return kept
}
