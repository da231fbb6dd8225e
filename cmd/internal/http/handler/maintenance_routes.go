package handler

import (
	"context"
	"net/http"

	"notehistory/cmd/internal/contract"

	"github.com/labstack/echo/v4"
)

type RepairService interface {
	RepairNotes(ctx context.Context) (*contract.RepairReport, error)
}

type DefaultMaintenanceRoute struct {
	RepairService RepairService
}

func NewMaintenanceDefault(repairService RepairService) *DefaultMaintenanceRoute {
	return &DefaultMaintenanceRoute{RepairService: repairService}
}

// RepairNotes re-points notes left without a valid current version.
func (m *DefaultMaintenanceRoute) RepairNotes(c echo.Context) error {
	report, err := m.RepairService.RepairNotes(c.Request().Context())
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
