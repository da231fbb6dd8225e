package service

import (
	"context"
	"encoding/json"
	"fmt"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/infrastructure/aws/storage"
	"notehistory/cmd/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// ErrExportDisabled is returned when no archive bucket is configured.
var ErrExportDisabled = &Error{Kind: KindStorage, Op: "export history", Message: "history export is not configured"}

// ExportService writes the full history of a note to object storage.
type ExportService struct {
	NoteRepo    NoteRepository
	VersionRepo VersionRepository
	Archive     storage.S3Client
}

func NewExportService(noteRepo NoteRepository, versionRepo VersionRepository, archive storage.S3Client) *ExportService {
	return &ExportService{
		NoteRepo:    noteRepo,
		VersionRepo: versionRepo,
		Archive:     archive,
	}
}

func (e *ExportService) ExportHistory(ctx context.Context, noteID int64) (*contract.ExportResponse, error) {
	const op = "export history"
	if e.Archive == nil {
		return nil, ErrExportDisabled
	}

	note, err := e.NoteRepo.FindByID(ctx, noteID)
	if err != nil {
		log.Errorf("failed to fetch note %d: %v", noteID, err)
		return nil, classify(op, err)
	}

	if note == nil {
		return nil, newError(KindNotFound, op, "note %d not found", noteID)
	}

	versions, err := e.VersionRepo.FindByNoteID(ctx, noteID)
	if err != nil {
		log.Errorf("failed to list versions of note %d: %v", noteID, err)
		return nil, classify(op, err)
	}

	doc := &contract.HistoryExport{
		NoteID:           note.ID,
		UserID:           note.UserID,
		CurrentVersionID: note.CurrentVersionID,
		ExportedAt:       utils.FormatEpoch(utils.NowUTC()),
		Versions:         make([]*contract.VersionResponse, len(versions)),
	}
	for i, version := range versions {
		doc.Versions[i] = toVersionResponse(version)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &Error{Kind: KindStorage, Op: op, Err: err}
	}

	filename := fmt.Sprintf("notes/%d/%s.json", noteID, uuid.NewString())
	key, err := e.Archive.UploadFile(ctx, data, filename)
	if err != nil {
		log.Errorf("failed to upload history of note %d: %v", noteID, err)
		return nil, &Error{Kind: KindStorage, Op: op, NoteID: noteID, Err: err}
	}

	return &contract.ExportResponse{
		NoteID:   noteID,
		Key:      key,
		Versions: len(versions),
	}, nil
}
