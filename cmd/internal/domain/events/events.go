package events

import "notehistory/cmd/internal/contract"

type SocketEvent interface {
	GetType() contract.EventType
}

type Ack struct{}

func (*Ack) GetType() contract.EventType {
	return contract.EventAck
}

type SessionExpired struct{}

func (*SessionExpired) GetType() contract.EventType {
	return contract.EventSessionExpired
}

// NoteCreated holds the new note id and its first version.
type NoteCreated struct {
	*contract.CreateNoteResponse
}

func (e *NoteCreated) GetType() contract.EventType {
	return contract.EventNoteCreated
}

// NoteRevised names the version appended by an edit.
type NoteRevised struct {
	*contract.NoteVersionRef
}

func (e *NoteRevised) GetType() contract.EventType {
	return contract.EventNoteRevised
}

// NoteRestored names the pre-existing version the note now points at.
type NoteRestored struct {
	*contract.NoteVersionRef
}

func (e *NoteRestored) GetType() contract.EventType {
	return contract.EventNoteRestored
}
