package contract

type EventType string

const (
	EventPing EventType = "ping"

	EventSessionExpired EventType = "SESSION_EXPIRED"
	EventAck            EventType = "ACK"

	EventNoteCreated  EventType = "NOTE_CREATED"
	EventNoteRevised  EventType = "NOTE_REVISED"
	EventNoteRestored EventType = "NOTE_RESTORED"
)

// IncomingSocketMessage is used for messages we receive from the users.
type IncomingSocketMessage struct {
	Type EventType `json:"type"`
}

// OutgoingSocketMessage is what we send to the Client
type OutgoingSocketMessage struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
