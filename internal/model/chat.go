package model

// ChatMessage is append-only: once created it is never modified.
type ChatMessage struct {
	ID        string `json:"id"`
	Sender    Role   `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
