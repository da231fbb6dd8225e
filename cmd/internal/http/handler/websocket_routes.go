package handler

import (
	"context"
	"net/http"
	"strconv"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/infrastructure/aws/websocket"
	"notehistory/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type WebSocketService interface {
	RegisterConnection(ctx context.Context, userID int64, connID string) error
	RemoveConnection(connectionID string)
	HandleMessage(msg *contract.IncomingSocketMessage, connID string)
}

// DefaultWSRoute receives the connect, disconnect and message callbacks of
// the API gateway.
type DefaultWSRoute struct {
	WSService WebSocketService
}

func NewWSDefault(wsService WebSocketService) *DefaultWSRoute {
	return &DefaultWSRoute{WSService: wsService}
}

func (h *DefaultWSRoute) HandleConnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError(websocket.HeaderConnectionID))
	}

	userID, err := strconv.ParseInt(c.QueryParam("userId"), 10, 64)
	if err != nil || userID < 1 {
		return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("userId", "int"))
	}

	if err := h.WSService.RegisterConnection(c.Request().Context(), userID, connID); err != nil {
		return replyError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleDisconnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID != "" {
		h.WSService.RemoveConnection(connID)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleMessage(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError(websocket.HeaderConnectionID))
	}

	var msg contract.IncomingSocketMessage
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedJSONError)
	}

	h.WSService.HandleMessage(&msg, connID)
	return c.NoContent(http.StatusOK)
}
