package chat

import "testing"

func TestHistory_Truncate(t *testing.T) {
	h := NewHistory(UserMessage("start"), ChatMessage{Role: ChatRoleAgent, Content: "opening"})
	mark := h.Len()

	h.Append(UserMessage("I look around"))
	h.Append(ChatMessage{Role: ChatRoleAgent, Content: "you see trees"})
	h.Truncate(mark)

	if h.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", h.Len())
	}
	if got := h.Messages()[1].Content; got != "opening" {
		t.Errorf("unexpected last message %q", got)
	}

	h.Truncate(10)
	if h.Len() != 2 {
		t.Errorf("truncate beyond length changed history")
	}
}

func TestHistory_MessagesIsCopy(t *testing.T) {
	h := NewHistory(UserMessage("a"))
	msgs := h.Messages()
	msgs[0].Content = "changed"
	if h.Messages()[0].Content != "a" {
		t.Error("Messages() leaked the backing slice")
	}
}
