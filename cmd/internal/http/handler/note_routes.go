package handler

import (
	"context"
	"net/http"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type NoteService interface {
	CreateNote(ctx context.Context, req *contract.CreateNoteRequest) (*contract.CreateNoteResponse, error)
	GetNote(ctx context.Context, id int64) (*contract.NoteResponse, error)
	ListNotes(ctx context.Context, page *contract.PageRequest) ([]*contract.NoteSummaryResponse, error)
	ReviseNote(ctx context.Context, noteID int64, req *contract.ReviseNoteRequest) (*contract.NoteVersionRef, error)
	RestoreVersion(ctx context.Context, noteID, versionID int64) (*contract.NoteVersionRef, error)
	ListVersions(ctx context.Context, noteID int64) ([]*contract.VersionResponse, error)
	GetVersion(ctx context.Context, noteID, versionID int64) (*contract.VersionResponse, error)
}

type ExportService interface {
	ExportHistory(ctx context.Context, noteID int64) (*contract.ExportResponse, error)
}

type DefaultNoteRoute struct {
	NoteService   NoteService
	ExportService ExportService
}

func NewNoteDefault(noteService NoteService, exportService ExportService) *DefaultNoteRoute {
	return &DefaultNoteRoute{
		NoteService:   noteService,
		ExportService: exportService,
	}
}

func (n *DefaultNoteRoute) GetNotes(c echo.Context) error {
	page, apierr := parsePage(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	notes, err := n.NoteService.ListNotes(c.Request().Context(), page)
	if err != nil {
		return replyError(c, err)
	}

	resp := echo.Map{"notes": notes}
	return c.JSON(http.StatusOK, &resp)
}

func (n *DefaultNoteRoute) GetNote(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	note, err := n.NoteService.GetNote(c.Request().Context(), id)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, note)
}

func (n *DefaultNoteRoute) CreateNote(c echo.Context) error {
	var req contract.CreateNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedJSONError)
	}

	created, err := n.NoteService.CreateNote(c.Request().Context(), &req)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (n *DefaultNoteRoute) ReviseNote(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req contract.ReviseNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedJSONError)
	}

	ref, err := n.NoteService.ReviseNote(c.Request().Context(), id, &req)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, ref)
}

func (n *DefaultNoteRoute) GetVersions(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	versions, err := n.NoteService.ListVersions(c.Request().Context(), id)
	if err != nil {
		return replyError(c, err)
	}

	resp := echo.Map{"versions": versions}
	return c.JSON(http.StatusOK, &resp)
}

func (n *DefaultNoteRoute) GetVersion(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	versionID, apierr := parseID(c, "versionId")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	version, err := n.NoteService.GetVersion(c.Request().Context(), id, versionID)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, version)
}

func (n *DefaultNoteRoute) RestoreVersion(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	versionID, apierr := parseID(c, "versionId")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	ref, err := n.NoteService.RestoreVersion(c.Request().Context(), id, versionID)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, ref)
}

func (n *DefaultNoteRoute) ExportVersions(c echo.Context) error {
	id, apierr := parseID(c, "id")
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	export, err := n.ExportService.ExportHistory(c.Request().Context(), id)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusCreated, export)
}
