package service

import (
	"context"
	"time"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/domain/entity"
	"notehistory/cmd/internal/domain/events"
	"notehistory/cmd/internal/infrastructure/aws/websocket"
	"notehistory/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

type ConnectionRepository interface {
	Save(conn *entity.Connection) error
	Delete(connID string) error
	FindByUserID(userID int64) ([]string, error)
	FindExpired(now int64) ([]*entity.Connection, error)
	UpdateHeartbeat(connID string, now int64) error
}

// WebSocketService keeps track of gateway connections and pushes note events
// to every connection of the note's owner.
type WebSocketService struct {
	ConnRepo ConnectionRepository
	UserRepo UserRepository
	Gateway  websocket.GatewayClient
}

func NewWebSocketService(repo ConnectionRepository, userRepo UserRepository, gateway websocket.GatewayClient) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		UserRepo: userRepo,
		Gateway:  gateway,
	}
}

func (s *WebSocketService) RegisterConnection(ctx context.Context, userID int64, connectionID string) error {
	const op = "register connection"
	if connectionID == "" {
		return newError(KindValidation, op, "connection id is required")
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", userID, err)
		return classify(op, err)
	}

	if user == nil {
		return newError(KindNotFound, op, "user %d not found", userID)
	}

	now := utils.NowUTC()
	conn := &entity.Connection{
		ConnectionID:    connectionID,
		UserID:          userID,
		ExpiresAt:       now + entity.ConnectionTTLMillis,
		LastHeartbeatAt: now, // Avoid users getting disconnected immediately
		CreatedAt:       now,
	}

	if err := s.ConnRepo.Save(conn); err != nil {
		log.Errorf("failed to save connection: %v", err)
		return classify(op, err)
	}
	return nil
}

func (s *WebSocketService) RemoveConnection(connectionID string) {
	// Not the client's fault if this fails
	_ = s.ConnRepo.Delete(connectionID)
}

func (s *WebSocketService) HandleMessage(msg *contract.IncomingSocketMessage, connID string) {
	switch msg.Type {
	case contract.EventPing:
		s.handlePing(connID)
	}
}

// Dispatch sends evt to every connection of userID. Failures on one
// connection don't stop the others.
func (s *WebSocketService) Dispatch(ctx context.Context, userID int64, evt events.SocketEvent) {
	conns, err := s.ConnRepo.FindByUserID(userID)
	if err != nil {
		log.Errorf("failed to fetch connections for user %d: %v", userID, err)
		return
	}

	envelope := toEnvelope(evt)
	for _, connID := range conns {
		_ = s.Gateway.PostToConnection(ctx, connID, envelope)
	}
}

// TerminateUserConnections sends a session expiry message and then drops
// every connection of the user.
func (s *WebSocketService) TerminateUserConnections(ctx context.Context, userID int64) {
	conns, err := s.ConnRepo.FindByUserID(userID)
	if err != nil {
		log.Errorf("failed to fetch connections for user %d: %v", userID, err)
		return
	}

	msg := toEnvelope(&events.SessionExpired{})
	for _, connID := range conns {
		_ = s.Gateway.PostToConnection(ctx, connID, msg)

		go func(cid string) {
			time.Sleep(200 * time.Millisecond)
			_ = s.Gateway.DeleteConnection(context.Background(), cid)
			_ = s.ConnRepo.Delete(cid)
		}(connID)
	}
}

// ExpireConnections drops every connection past its TTL or missing
// heartbeats and reports how many were dropped.
func (s *WebSocketService) ExpireConnections(ctx context.Context) (int, error) {
	conns, err := s.ConnRepo.FindExpired(utils.NowUTC())
	if err != nil {
		return 0, err
	}

	envelope := toEnvelope(&events.SessionExpired{})
	for _, conn := range conns {
		// So clients know not to reconnect
		_ = s.Gateway.PostToConnection(ctx, conn.ConnectionID, envelope)
		_ = s.Gateway.DeleteConnection(ctx, conn.ConnectionID)
		_ = s.ConnRepo.Delete(conn.ConnectionID)
	}
	return len(conns), nil
}

func (s *WebSocketService) handlePing(connID string) {
	if err := s.ConnRepo.UpdateHeartbeat(connID, utils.NowUTC()); err != nil {
		log.Errorf("failed to update heartbeat: %v", err)
		return
	}

	go func(conn string) {
		err := s.Gateway.PostToConnection(context.Background(), conn, toEnvelope(&events.Ack{}))
		if err != nil {
			log.Errorf("failed to post ack to conn %s: %v", conn, err)
		}
	}(connID)
}

func toEnvelope(evt events.SocketEvent) *contract.OutgoingSocketMessage {
	return &contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	}
}
