package apierror

import (
	"errors"
	"net/http"
	"testing"

	"notehistory/cmd/internal/service"
	"notehistory/cmd/internal/utils/validators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromServiceErrorStatus(t *testing.T) {
	cases := map[service.ErrorKind]int{
		service.KindValidation:    http.StatusBadRequest,
		service.KindNotFound:      http.StatusNotFound,
		service.KindConstraint:    http.StatusConflict,
		service.KindConflict:      http.StatusConflict,
		service.KindPartialCreate: http.StatusInternalServerError,
		service.KindStorage:       http.StatusServiceUnavailable,
	}

	for kind, status := range cases {
		resp := FromServiceError(&service.Error{Kind: kind, Op: "op"})
		assert.Equal(t, status, resp.Code(), string(kind))
	}

	assert.Equal(t, http.StatusInternalServerError, FromServiceError(errors.New("boom")).Code())
	assert.Equal(t, http.StatusNotImplemented, FromServiceError(service.ErrExportDisabled).Code())
}

func TestFromServiceErrorKeepsRecoveryIDs(t *testing.T) {
	resp := FromServiceError(&service.Error{Kind: service.KindPartialCreate, Op: "create note", NoteID: 4, VersionID: 9})

	recovery, ok := resp.(*RecoveryError)
	require.True(t, ok)
	assert.EqualValues(t, 4, recovery.NoteID)
	assert.EqualValues(t, 9, recovery.VersionID)
	assert.Equal(t, "PARTIAL_CREATE_FAILURE", recovery.Kind)

	resp = FromServiceError(&service.Error{Kind: service.KindStorage, Op: "revise note", NoteID: 4, VersionID: 10})
	recovery, ok = resp.(*RecoveryError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, recovery.Code())
	assert.EqualValues(t, 10, recovery.VersionID)
}

func TestFromServiceErrorMessages(t *testing.T) {
	resp := FromServiceError(&service.Error{Kind: service.KindValidation, Op: "revise note", Message: "nothing to update"})
	assert.Equal(t, "Nothing to update", resp.(*APIError).Message)

	resp = FromServiceError(&service.Error{Kind: service.KindNotFound, Op: "get note", Message: "note 3 not found"})
	assert.Equal(t, "Note 3 not found", resp.(*APIError).Message)
}

func TestFromValidationError(t *testing.T) {
	type request struct {
		Title    string `validate:"required,notblank"`
		PageSize int    `validate:"max=100"`
	}

	err := validators.New().Struct(&request{Title: "  ", PageSize: 500})
	require.Error(t, err)

	resp := FromServiceError(&service.Error{Kind: service.KindValidation, Op: "op", Err: err})
	structured, ok := resp.(*StructuredError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, structured.Code())
	assert.Equal(t, []string{"Value must not be blank"}, structured.Errors["title"])
	assert.Equal(t, []string{"Value is too long, max: 100"}, structured.Errors["pageSize"])

	assert.Nil(t, FromValidationError(errors.New("plain")))
}
