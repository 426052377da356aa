package chat

import "slices"

// History is the ordered conversation of one session.
type History struct {
	messages []ChatMessage
}

// NewHistory returns a history seeded with msgs.
func NewHistory(msgs ...ChatMessage) *History {
	return &History{messages: slices.Clone(msgs)}
}

// Append adds messages in order.
func (h *History) Append(msgs ...ChatMessage) {
	h.messages = append(h.messages, msgs...)
}

// Messages returns a copy of the conversation.
func (h *History) Messages() []ChatMessage {
	return slices.Clone(h.messages)
}

// Len returns the number of messages.
func (h *History) Len() int { return len(h.messages) }

// Truncate drops every message after the first n. It is used to discard
// a failed turn.
func (h *History) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(h.messages) {
		clear(h.messages[n:])
		h.messages = h.messages[:n]
	}
}
