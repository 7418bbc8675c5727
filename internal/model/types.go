package model

// Message is a durably persisted chat message. ReceiverID is set only for
// directed messages; nil means a room broadcast.
type Message struct {
	ID         string
	RoomID     int64
	SenderID   string
	ReceiverID *string
	Content    string
	CreatedAt  int64
}
