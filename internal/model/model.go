package model

// Chunk is a bounded-length contiguous excerpt of an ingested document.
// SourceOffset is the rune offset of the chunk's first rune in the original
// text, including any overlap repeated from the previous chunk.
type Chunk struct {
	Text         string `json:"text"`
	SourceOffset int    `json:"source_offset"`
}

// Topic is a candidate study topic. Topics stay mutable (rename, select)
// until question generation locks the set for the quiz.
type Topic struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// Question is generated once per selected topic and is immutable afterwards.
type Question struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Topic string `json:"topic"`
}

type Sender string

const (
	SenderSystem    Sender = "system"
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ConversationTurn is one entry of the append-only dialogue attached to a
// question. Order is insertion order and is never rewritten.
type ConversationTurn struct {
	Sender  Sender `json:"sender"`
	Message string `json:"message"`
}

type SessionState string

const (
	StateUnanswered    SessionState = "unanswered"
	StateAnswered      SessionState = "answered"
	StateFeedbackReady SessionState = "feedback_ready"
	StateDiscussing    SessionState = "discussing"
)

// SessionRecord is a snapshot of the per-question conversation state: the
// answer, the grounded feedback and the accumulated dialogue.
type SessionRecord struct {
	Question Question           `json:"question"`
	State    SessionState       `json:"state"`
	Answer   string             `json:"answer"`
	Feedback string             `json:"feedback"`
	Turns    []ConversationTurn `json:"turns"`
	Score    int                `json:"score"`
	Scored   bool               `json:"scored"`
}
