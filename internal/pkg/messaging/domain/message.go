package messaging

import "time"

// User is a durable identity behind one channel address. Exactly one of
// PhoneNumber and Email is populated.
type User struct {
	ID          int64      `db:"user_id"`
	PhoneNumber *string    `db:"phone_number"`
	Email       *string    `db:"email"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Conversation is the immutable container for a two-party thread.
type Conversation struct {
	ID        int64     `db:"conversation_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Participant links a user into a conversation.
// Primary key: (ConversationID, UserID). Exactly two rows per conversation.
type Participant struct {
	ConversationID int64 `db:"conversation_id"`
	UserID         int64 `db:"user_id"`
}

// Message is an immutable log entry in a conversation.
type Message struct {
	ID             int64       `db:"message_id"`
	ConversationID int64       `db:"conversation_id"`
	SenderID       int64       `db:"sender_id"`
	RecipientID    int64       `db:"recipient_id"`
	Body           string      `db:"body"`
	ProviderID     *string     `db:"provider_id"`
	MessageType    MessageType `db:"message_type"`
	Attachments    []string    `db:"attachments"`
	Status         *string     `db:"status"`
	CreatedAt      time.Time   `db:"created_at"`
}
