package models

import "time"

// Bot binds an inbound messaging channel to a flow. Messages received for a
// bot trigger a run of its configured flow.
type Bot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"      validate:"required,min=1"`
	FlowID    string    `json:"flow_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation groups messages exchanged with one customer.
type Conversation struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name,omitempty"`
}

// Message is a single inbound message within a conversation.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id,omitempty"`
	Content        string `json:"content"`
}
