package domain

// Key addresses all per-user conversation state. It pairs a conversation
// thread with the sender, so two users in the same thread never share an
// order.
type Key struct {
	ConversationID string
	UserID         string
}

func (k Key) String() string {
	return k.ConversationID + "/" + k.UserID
}
