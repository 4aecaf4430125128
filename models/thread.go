package models

// Thread is one persistent conversation: its message history plus the
// workflow state accumulated so far. Threads are created lazily on
// first reference and live for the process lifetime.
type Thread struct {
	ID       string        `json:"thread_id"`
	Messages []Message     `json:"messages"`
	State    WorkflowState `json:"state"`
}

// HasAssistantMessage reports whether the assistant has spoken on this
// thread yet. A thread without one gets the welcome turn.
func (t *Thread) HasAssistantMessage() bool {
	for _, m := range t.Messages {
		if m.Role == RoleAssistant {
			return true
		}
	}
	return false
}

// LastUserText returns the content of the most recent user message, or
// "" if the user has not spoken.
func (t *Thread) LastUserText() string {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleUser {
			return t.Messages[i].Content
		}
	}
	return ""
}

// LastAssistantText returns the content of the most recent assistant
// message, or "" if there is none.
func (t *Thread) LastAssistantText() string {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleAssistant {
			return t.Messages[i].Content
		}
	}
	return ""
}
