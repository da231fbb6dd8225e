package contract

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=120"`
	Age   *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	Email string `json:"email" validate:"required,email"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email string `json:"email"`
}

type UserSummaryResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Email         string `json:"email"`
	NotesCount    int64  `json:"notesCount"`
	VersionsCount int64  `json:"versionsCount"`
}

type CreateUserResponse struct {
	ID int64 `json:"id"`
}
