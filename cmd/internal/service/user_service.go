package service

import (
	"context"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/domain/entity"
	"notehistory/cmd/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindPageWithCounts(ctx context.Context, offset, limit int) ([]*entity.UserSummary, error)
	Save(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// SessionTerminator drops live connections of a user that no longer exists.
type SessionTerminator interface {
	TerminateUserConnections(ctx context.Context, userID int64)
}

type UserService struct {
	UserRepo UserRepository
	Sessions SessionTerminator
	Validate *validator.Validate
}

func NewUserService(userRepo UserRepository, sessions SessionTerminator, validate *validator.Validate) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Sessions: sessions,
		Validate: validate,
	}
}

func (u *UserService) CreateUser(ctx context.Context, req *contract.CreateUserRequest) (*contract.CreateUserResponse, error) {
	const op = "create user"
	utils.Sanitize(req)
	if err := validateStruct(u.Validate, op, req); err != nil {
		return nil, err
	}

	if req.Age == nil {
		return nil, newError(KindValidation, op, "age is required")
	}

	exists, err := u.UserRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, u.fail(op, err)
	}

	if exists {
		return nil, newError(KindConstraint, op, "email %s is already registered", req.Email)
	}

	user := &entity.User{
		Name:  req.Name,
		Age:   *req.Age,
		Email: req.Email,
	}

	// Lost races on the email are still caught by the unique index.
	if err := u.UserRepo.Save(ctx, user); err != nil {
		return nil, u.fail(op, err)
	}
	return &contract.CreateUserResponse{ID: user.ID}, nil
}

func (u *UserService) GetUser(ctx context.Context, id int64) (*contract.UserResponse, error) {
	const op = "get user"
	user, err := u.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, u.fail(op, err)
	}

	if user == nil {
		return nil, newError(KindNotFound, op, "user %d not found", id)
	}

	return &contract.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Age:   user.Age,
		Email: user.Email,
	}, nil
}

// ListUsers returns a page of users ordered by id, each with how many notes
// and versions it owns. Users without notes are included with zero counts.
func (u *UserService) ListUsers(ctx context.Context, page *contract.PageRequest) ([]*contract.UserSummaryResponse, error) {
	const op = "list users"
	if err := validateStruct(u.Validate, op, page); err != nil {
		return nil, err
	}

	users, err := u.UserRepo.FindPageWithCounts(ctx, utils.Offset(page.Page, page.PageSize), page.PageSize)
	if err != nil {
		return nil, u.fail(op, err)
	}

	resp := make([]*contract.UserSummaryResponse, len(users))
	for i, user := range users {
		resp[i] = &contract.UserSummaryResponse{
			ID:            user.ID,
			Name:          user.Name,
			Age:           user.Age,
			Email:         user.Email,
			NotesCount:    user.NotesCount,
			VersionsCount: user.VersionsCount,
		}
	}
	return resp, nil
}

// DeleteUser removes the user together with all of its notes and their history.
func (u *UserService) DeleteUser(ctx context.Context, id int64) error {
	const op = "delete user"
	deleted, err := u.UserRepo.Delete(ctx, id)
	if err != nil {
		return u.fail(op, err)
	}

	if !deleted {
		return newError(KindNotFound, op, "user %d not found", id)
	}

	if u.Sessions != nil {
		go u.Sessions.TerminateUserConnections(context.Background(), id)
	}
	return nil
}

func (u *UserService) fail(op string, err error) *Error {
	serr := classify(op, err)
	if serr.Kind == KindStorage {
		log.Errorf("%s: %v", op, err)
	}
	return serr
}
