package handler

import (
	"context"
	"net/http"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	CreateUser(ctx context.Context, req *contract.CreateUserRequest) (*contract.CreateUserResponse, error)
	GetUser(ctx context.Context, id int64) (*contract.UserResponse, error)
	ListUsers(ctx context.Context, page *contract.PageRequest) ([]*contract.UserSummaryResponse, error)
	DeleteUser(ctx context.Context, id int64) error
}

type DefaultUserRoute struct {
	UserService UserService
}

func NewUserDefault(userService UserService) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService}
}

func (u *DefaultUserRoute) GetUsers(c echo.Context) error {
	page, apierr := parsePage(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	users, err := u.UserService.ListUsers(c.Request().Context(), page)
	if err != nil {
		return replyError(c, err)
	}

	resp := echo.Map{"users": users}
	return c.JSON(http.StatusOK, &resp)
}

func (u *DefaultUserRoute) GetUser(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	user, err := u.UserService.GetUser(c.Request().Context(), id)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (u *DefaultUserRoute) CreateUser(c echo.Context) error {
	var req contract.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedJSONError)
	}

	created, err := u.UserService.CreateUser(c.Request().Context(), &req)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (u *DefaultUserRoute) DeleteUser(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	if err := u.UserService.DeleteUser(c.Request().Context(), id); err != nil {
		return replyError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
