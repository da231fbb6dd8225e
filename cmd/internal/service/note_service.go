package service

import (
	"context"
	"errors"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/domain/entity"
	"notehistory/cmd/internal/domain/events"
	"notehistory/cmd/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// PointerMover is the unchecked pointer primitive. It never verifies that the
// version belongs to the note, so only the coordinator below calls it.
type PointerMover interface {
	SetCurrentVersion(ctx context.Context, noteID, versionID int64) (*entity.Note, error)
	SetCurrentVersionIf(ctx context.Context, noteID, expectedID, versionID int64) (bool, error)
}

type NoteRepository interface {
	PointerMover
	Create(ctx context.Context, note *entity.Note) error
	FindByID(ctx context.Context, id int64) (*entity.Note, error)
	FindDetailByID(ctx context.Context, id int64) (*entity.NoteDetail, error)
	FindPage(ctx context.Context, offset, limit int) ([]*entity.NoteSummary, error)
	FindInconsistentIDs(ctx context.Context) ([]int64, error)
}

type VersionRepository interface {
	Create(ctx context.Context, version *entity.NoteVersion) error
	FindByID(ctx context.Context, id int64) (*entity.NoteVersion, error)
	FindByNoteID(ctx context.Context, noteID int64) ([]*entity.NoteVersion, error)
	FindLatestByNoteID(ctx context.Context, noteID int64) (*entity.NoteVersion, error)
}

// Transactor runs fn in a unit of work carried by the context. Nested calls
// open a savepoint.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventDispatcher interface {
	Dispatch(ctx context.Context, userID int64, evt events.SocketEvent)
}

const DefaultPointerMoveAttempts = 3

// DefaultNoteService is the only writer of versions and note pointers.
type DefaultNoteService struct {
	NoteRepo    NoteRepository
	VersionRepo VersionRepository
	UserRepo    UserRepository
	Tx          Transactor
	Events      EventDispatcher
	Validate    *validator.Validate

	// PointerMoveAttempts bounds the retries of a single pointer move.
	PointerMoveAttempts int
}

func NewNoteService(
	noteRepo NoteRepository,
	versionRepo VersionRepository,
	userRepo UserRepository,
	tx Transactor,
	dispatcher EventDispatcher,
	validate *validator.Validate,
	pointerMoveAttempts int,
) *DefaultNoteService {
	return &DefaultNoteService{
		NoteRepo:            noteRepo,
		VersionRepo:         versionRepo,
		UserRepo:            userRepo,
		Tx:                  tx,
		Events:              dispatcher,
		Validate:            validate,
		PointerMoveAttempts: pointerMoveAttempts,
	}
}

// CreateNote writes the note, its first version and the pointer in a single
// transaction. When the commit outcome is unknown the note is probed to tell
// a clean failure from a half-written one.
func (n *DefaultNoteService) CreateNote(ctx context.Context, req *contract.CreateNoteRequest) (*contract.CreateNoteResponse, error) {
	const op = "create note"
	if err := validateStruct(n.Validate, op, req); err != nil {
		return nil, err
	}

	var (
		note     entity.Note
		version  entity.NoteVersion
		finished bool
	)

	err := n.Tx.Transaction(ctx, func(ctx context.Context) error {
		owner, err := n.UserRepo.FindByID(ctx, req.UserID)
		if err != nil {
			return err
		}

		if owner == nil {
			return newError(KindConstraint, op, "user %d does not exist", req.UserID)
		}

		now := utils.NowUTC()
		note = entity.Note{UserID: req.UserID, CreatedAt: now, UpdatedAt: now}
		if err := n.NoteRepo.Create(ctx, &note); err != nil {
			return err
		}

		version = entity.NoteVersion{
			NoteID:    note.ID,
			Title:     req.Title,
			Content:   req.Content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := n.VersionRepo.Create(ctx, &version); err != nil {
			return err
		}

		if err := n.movePointer(ctx, note.ID, version.ID, nil); err != nil {
			return err
		}

		finished = true
		return nil
	})

	if err != nil && finished {
		return n.probeCreated(ctx, op, note.ID, &version, err)
	}

	if err != nil {
		return nil, n.fail(op, err)
	}

	resp := &contract.CreateNoteResponse{NoteID: note.ID, Version: toVersionResponse(&version)}
	n.dispatch(note.UserID, &events.NoteCreated{CreateNoteResponse: resp})
	return resp, nil
}

// probeCreated decides what a create whose commit failed actually left behind.
func (n *DefaultNoteService) probeCreated(ctx context.Context, op string, noteID int64, version *entity.NoteVersion, cause error) (*contract.CreateNoteResponse, error) {
	detail, err := n.NoteRepo.FindDetailByID(ctx, noteID)
	partial := &Error{
		Kind:      KindPartialCreate,
		Op:        op,
		Message:   "note was created without a valid current version",
		NoteID:    noteID,
		VersionID: version.ID,
		Err:       cause,
	}

	switch {
	case err != nil:
		log.Errorf("failed to probe note %d after commit error: %v", noteID, err)
		return nil, partial

	case detail == nil:
		log.Errorf("note creation was rolled back: %v", cause)
		return nil, &Error{Kind: KindStorage, Op: op, Err: cause}

	case detail.CurrentVersionID != nil && *detail.CurrentVersionID == version.ID && detail.Title != nil:
		resp := &contract.CreateNoteResponse{NoteID: noteID, Version: toVersionResponse(version)}
		n.dispatch(detail.UserID, &events.NoteCreated{CreateNoteResponse: resp})
		return resp, nil

	default:
		log.Errorf("note %d left without a valid pointer: %v", noteID, cause)
		return nil, partial
	}
}

func (n *DefaultNoteService) GetNote(ctx context.Context, id int64) (*contract.NoteResponse, error) {
	const op = "get note"
	detail, err := n.NoteRepo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, n.fail(op, err)
	}

	if detail == nil {
		return nil, newError(KindNotFound, op, "note %d not found", id)
	}
	return toNoteResponse(detail), nil
}

func (n *DefaultNoteService) ListNotes(ctx context.Context, page *contract.PageRequest) ([]*contract.NoteSummaryResponse, error) {
	const op = "list notes"
	if err := validateStruct(n.Validate, op, page); err != nil {
		return nil, err
	}

	notes, err := n.NoteRepo.FindPage(ctx, utils.Offset(page.Page, page.PageSize), page.PageSize)
	if err != nil {
		return nil, n.fail(op, err)
	}

	resp := make([]*contract.NoteSummaryResponse, len(notes))
	for i, note := range notes {
		resp[i] = toNoteSummaryResponse(note)
	}
	return resp, nil
}

// ReviseNote appends a version built from the request merged over the active
// version, then points the note at it. The version is committed before the
// pointer moves, so a failed move still leaves it in history.
func (n *DefaultNoteService) ReviseNote(ctx context.Context, noteID int64, req *contract.ReviseNoteRequest) (*contract.NoteVersionRef, error) {
	const op = "revise note"
	if req.Title == nil && req.Content == nil {
		return nil, newError(KindValidation, op, "nothing to update")
	}

	detail, err := n.NoteRepo.FindDetailByID(ctx, noteID)
	if err != nil {
		return nil, n.fail(op, err)
	}

	if detail == nil {
		return nil, newError(KindNotFound, op, "note %d not found", noteID)
	}

	snapshot := mergeSnapshot(detail, req)
	if err := validateStruct(n.Validate, op, snapshot); err != nil {
		return nil, err
	}

	now := utils.NowUTC()
	version := &entity.NoteVersion{
		NoteID:    noteID,
		Title:     snapshot.Title,
		Content:   snapshot.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := n.VersionRepo.Create(ctx, version); err != nil {
		if errors.Is(err, entity.ErrConstraintViolation) {
			return nil, newError(KindNotFound, op, "note %d not found", noteID)
		}
		return nil, n.fail(op, err)
	}

	if err := n.movePointer(ctx, noteID, version.ID, req.ExpectedVersionID); err != nil {
		serr := n.fail(op, err)
		serr.NoteID = noteID
		serr.VersionID = version.ID
		return nil, serr
	}

	ref := &contract.NoteVersionRef{NoteID: noteID, VersionID: version.ID}
	n.dispatch(detail.UserID, &events.NoteRevised{NoteVersionRef: ref})
	return ref, nil
}

// RestoreVersion points the note at one of its existing versions. No version
// is created.
func (n *DefaultNoteService) RestoreVersion(ctx context.Context, noteID, versionID int64) (*contract.NoteVersionRef, error) {
	const op = "restore version"

	var ownerID int64
	err := n.Tx.Transaction(ctx, func(ctx context.Context) error {
		note, err := n.NoteRepo.FindByID(ctx, noteID)
		if err != nil {
			return err
		}

		if note == nil {
			return newError(KindNotFound, op, "note %d not found", noteID)
		}

		version, err := n.VersionRepo.FindByID(ctx, versionID)
		if err != nil {
			return err
		}

		if version == nil || version.NoteID != noteID {
			return newError(KindNotFound, op, "version %d not found for note %d", versionID, noteID)
		}

		ownerID = note.UserID
		return n.movePointer(ctx, noteID, versionID, nil)
	})

	if err != nil {
		return nil, n.fail(op, err)
	}

	ref := &contract.NoteVersionRef{NoteID: noteID, VersionID: versionID}
	n.dispatch(ownerID, &events.NoteRestored{NoteVersionRef: ref})
	return ref, nil
}

func (n *DefaultNoteService) ListVersions(ctx context.Context, noteID int64) ([]*contract.VersionResponse, error) {
	const op = "list versions"
	note, err := n.NoteRepo.FindByID(ctx, noteID)
	if err != nil {
		return nil, n.fail(op, err)
	}

	if note == nil {
		return nil, newError(KindNotFound, op, "note %d not found", noteID)
	}

	versions, err := n.VersionRepo.FindByNoteID(ctx, noteID)
	if err != nil {
		return nil, n.fail(op, err)
	}

	resp := make([]*contract.VersionResponse, len(versions))
	for i, version := range versions {
		resp[i] = toVersionResponse(version)
	}
	return resp, nil
}

func (n *DefaultNoteService) GetVersion(ctx context.Context, noteID, versionID int64) (*contract.VersionResponse, error) {
	const op = "get version"
	version, err := n.VersionRepo.FindByID(ctx, versionID)
	if err != nil {
		return nil, n.fail(op, err)
	}

	if version == nil || version.NoteID != noteID {
		return nil, newError(KindNotFound, op, "version %d not found for note %d", versionID, noteID)
	}
	return toVersionResponse(version), nil
}

// RepairNotes re-points every note whose pointer is unset or foreign to its
// most recent version. Notes without any version are reported and left alone.
func (n *DefaultNoteService) RepairNotes(ctx context.Context) (*contract.RepairReport, error) {
	const op = "repair notes"
	ids, err := n.NoteRepo.FindInconsistentIDs(ctx)
	if err != nil {
		return nil, n.fail(op, err)
	}

	report := &contract.RepairReport{
		Found:      len(ids),
		Repaired:   make([]int64, 0, len(ids)),
		Unrepaired: make([]int64, 0),
	}

	for _, id := range ids {
		repaired, err := n.repairNote(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, n.fail(op, ctx.Err())
			}

			log.Errorf("failed to repair note %d: %v", id, err)
			report.Unrepaired = append(report.Unrepaired, id)
			continue
		}

		if repaired {
			report.Repaired = append(report.Repaired, id)
		}
	}
	return report, nil
}

func (n *DefaultNoteService) repairNote(ctx context.Context, noteID int64) (bool, error) {
	repaired := false
	err := n.Tx.Transaction(ctx, func(ctx context.Context) error {
		detail, err := n.NoteRepo.FindDetailByID(ctx, noteID)
		if err != nil {
			return err
		}

		// Deleted, or fixed by a concurrent request since the scan.
		if detail == nil || detail.Title != nil {
			return nil
		}

		latest, err := n.VersionRepo.FindLatestByNoteID(ctx, noteID)
		if err != nil {
			return err
		}

		if latest == nil {
			return errNoVersions
		}

		if _, err := n.NoteRepo.SetCurrentVersion(ctx, noteID, latest.ID); err != nil {
			return err
		}

		repaired = true
		return nil
	})
	return repaired, err
}

// movePointer runs the pointer update in its own unit of work, retrying up to
// PointerMoveAttempts times. With expected set the update is a compare-and-swap
// and a lost race is returned at once.
func (n *DefaultNoteService) movePointer(ctx context.Context, noteID, versionID int64, expected *int64) error {
	attempts := n.PointerMoveAttempts
	if attempts < 1 {
		attempts = DefaultPointerMoveAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := n.Tx.Transaction(ctx, func(ctx context.Context) error {
			if expected != nil {
				swapped, err := n.NoteRepo.SetCurrentVersionIf(ctx, noteID, *expected, versionID)
				if err != nil {
					return err
				}

				if !swapped {
					return errPointerMoved
				}
				return nil
			}

			note, err := n.NoteRepo.SetCurrentVersion(ctx, noteID, versionID)
			if err != nil {
				return err
			}

			if note == nil {
				return errNoteGone
			}
			return nil
		})

		if err == nil {
			return nil
		}

		if errors.Is(err, errPointerMoved) || errors.Is(err, errNoteGone) || ctx.Err() != nil {
			return err
		}

		lastErr = err
		log.Warnf("pointer move of note %d to version %d failed (attempt %d/%d): %v", noteID, versionID, attempt, attempts, err)
	}
	return lastErr
}

func (n *DefaultNoteService) fail(op string, err error) *Error {
	serr := classify(op, err)
	if serr.Kind == KindStorage {
		log.Errorf("%s: %v", op, err)
	}
	return serr
}

func (n *DefaultNoteService) dispatch(userID int64, evt events.SocketEvent) {
	if n.Events == nil {
		return
	}
	go n.Events.Dispatch(context.Background(), userID, evt)
}

func mergeSnapshot(detail *entity.NoteDetail, req *contract.ReviseNoteRequest) *contract.Snapshot {
	snapshot := &contract.Snapshot{}
	if detail.Title != nil {
		snapshot.Title = *detail.Title
	}

	if detail.Content != nil {
		snapshot.Content = *detail.Content
	}

	if req.Title != nil {
		snapshot.Title = *req.Title
	}

	if req.Content != nil {
		snapshot.Content = *req.Content
	}
	return snapshot
}

func toNoteResponse(detail *entity.NoteDetail) *contract.NoteResponse {
	return &contract.NoteResponse{
		ID:               detail.ID,
		UserID:           detail.UserID,
		CurrentVersionID: detail.CurrentVersionID,
		Title:            detail.Title,
		Content:          detail.Content,
		VersionCount:     detail.VersionCount,
		CreatedAt:        utils.FormatEpoch(detail.CreatedAt),
		UpdatedAt:        utils.FormatEpoch(detail.UpdatedAt),
	}
}

func toNoteSummaryResponse(note *entity.NoteSummary) *contract.NoteSummaryResponse {
	return &contract.NoteSummaryResponse{
		ID:               note.ID,
		UserID:           note.UserID,
		CurrentVersionID: note.CurrentVersionID,
		Title:            note.Title,
		UpdatedAt:        utils.FormatEpoch(note.UpdatedAt),
	}
}

func toVersionResponse(version *entity.NoteVersion) *contract.VersionResponse {
	return &contract.VersionResponse{
		ID:        version.ID,
		NoteID:    version.NoteID,
		Title:     version.Title,
		Content:   version.Content,
		CreatedAt: utils.FormatEpoch(version.CreatedAt),
		UpdatedAt: utils.FormatEpoch(version.UpdatedAt),
	}
}
