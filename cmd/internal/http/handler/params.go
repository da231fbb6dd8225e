package handler

import (
	"strconv"
	"strings"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (int64, apierror.ErrorResponse) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id < 1 {
		return 0, apierror.InvalidIDError
	}
	return id, nil
}

// parsePage reads the page and pageSize query parameters, applying defaults
// when they are absent. Range checks are left to the services.
func parsePage(c echo.Context) (*contract.PageRequest, apierror.ErrorResponse) {
	page := &contract.PageRequest{
		Page:     contract.DefaultPage,
		PageSize: contract.DefaultPageSize,
	}

	if raw := c.QueryParam("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apierror.NewInvalidParamTypeError("page", "int")
		}
		page.Page = v
	}

	if raw := c.QueryParam("pageSize"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apierror.NewInvalidParamTypeError("pageSize", "int")
		}
		page.PageSize = v
	}
	return page, nil
}

func replyError(c echo.Context, err error) error {
	apierr := apierror.FromServiceError(err)
	return c.JSON(apierr.Code(), apierr)
}
