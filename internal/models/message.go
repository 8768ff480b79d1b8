package models

// InboundMessage is a chat message delivered by the transport bridge.
type InboundMessage struct {
	ID      string   `json:"id"`                // Transport-assigned message id
	UserID  string   `json:"user_id"`           // Sender identity checked against the allow-list
	ChatID  string   `json:"chat_id"`           // Conversation the reply is addressed to
	Command string   `json:"command,omitempty"` // Explicit command or button payload, e.g. "/wake"
	Args    []string `json:"args,omitempty"`    // Command arguments, e.g. ["+"] for volume
	Text    string   `json:"text,omitempty"`    // Free-form text
	Voice   []byte   `json:"voice,omitempty"`   // Voice note audio (base64 on the wire)
}

// OutboundReply is published back to the transport bridge.
type OutboundReply struct {
	InReplyTo string `json:"in_reply_to"`          // InboundMessage.ID
	ChatID    string `json:"chat_id"`              // Destination conversation
	Text      string `json:"text,omitempty"`       // Reply text or image caption
	Image     []byte `json:"image,omitempty"`      // Image payload (base64 on the wire)
	ImageType string `json:"image_type,omitempty"` // MIME type of Image
}
