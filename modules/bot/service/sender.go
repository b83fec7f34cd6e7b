package service

// OutgoingMessage is one reply to a chat. Keyboard rows, when present, are
// rendered as a reply keyboard with a trailing Cancel button; otherwise any
// previous keyboard is removed.
type OutgoingMessage struct {
	ChatID   int64
	Text     string
	Keyboard [][]string
}

// Sender delivers outbound messages. Implemented by the Telegram transport;
// tests substitute a recorder.
type Sender interface {
	Send(msg OutgoingMessage) error
}

// Incoming is one inbound chat message as handed to the conversation
// machine by the transport.
type Incoming struct {
	UserID    int64
	ChatID    int64
	NickName  string
	FirstName string
	LastName  string
	Text      string
}
