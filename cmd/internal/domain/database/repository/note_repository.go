package repository

import (
	"context"

	"notehistory/cmd/internal/domain/entity"
	"notehistory/cmd/internal/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// currentVersionJoin only matches a version that belongs to the note, so a
// foreign pointer reads the same as an unset one.
const currentVersionJoin = "LEFT JOIN note_versions ON note_versions.id = notes.current_version_id AND note_versions.note_id = notes.id"

type DefaultNoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *DefaultNoteRepository {
	return &DefaultNoteRepository{db: db}
}

func (d *DefaultNoteRepository) Create(ctx context.Context, note *entity.Note) error {
	return wrap(conn(ctx, d.db).Omit("Versions").Create(note).Error, "inserting note")
}

func (d *DefaultNoteRepository) FindByID(ctx context.Context, id int64) (*entity.Note, error) {
	var note entity.Note
	err := conn(ctx, d.db).First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, wrap(err, "fetching note")
	}
	return &note, nil
}

// FindDetailByID returns the note joined with its active version, or nil when
// the note does not exist.
func (d *DefaultNoteRepository) FindDetailByID(ctx context.Context, id int64) (*entity.NoteDetail, error) {
	var detail entity.NoteDetail
	result := conn(ctx, d.db).
		Table("notes").
		Select("notes.id, notes.user_id, notes.current_version_id, " +
			"note_versions.title, note_versions.content, " +
			"(SELECT COUNT(*) FROM note_versions nv WHERE nv.note_id = notes.id) AS version_count, " +
			"notes.created_at, notes.updated_at").
		Joins(currentVersionJoin).
		Where("notes.id = ?", id).
		Limit(1).
		Scan(&detail)

	if result.Error != nil {
		return nil, wrap(result.Error, "fetching note detail")
	}

	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &detail, nil
}

// FindPage lists notes by active title, then id. Notes without a resolvable
// version come first on every driver.
func (d *DefaultNoteRepository) FindPage(ctx context.Context, offset, limit int) ([]*entity.NoteSummary, error) {
	notes := make([]*entity.NoteSummary, 0, limit)
	err := conn(ctx, d.db).
		Table("notes").
		Select("notes.id, notes.user_id, notes.current_version_id, note_versions.title, notes.updated_at").
		Joins(currentVersionJoin).
		Order("note_versions.title IS NULL DESC").
		Order("note_versions.title ASC").
		Order("notes.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&notes).Error

	if err != nil {
		return nil, wrap(err, "listing notes")
	}
	return notes, nil
}

// SetCurrentVersion moves the pointer without checking who owns versionID.
// Returns nil when the note does not exist.
func (d *DefaultNoteRepository) SetCurrentVersion(ctx context.Context, noteID, versionID int64) (*entity.Note, error) {
	result := conn(ctx, d.db).
		Model(&entity.Note{}).
		Where("id = ?", noteID).
		Updates(map[string]any{
			"current_version_id": versionID,
			"updated_at":         utils.NowUTC(),
		})

	if result.Error != nil {
		return nil, wrap(result.Error, "moving note pointer")
	}

	if result.RowsAffected == 0 {
		return nil, nil
	}
	return d.FindByID(ctx, noteID)
}

// SetCurrentVersionIf moves the pointer only while it still references
// expectedID. It reports false when the pointer had already moved or the note is gone.
func (d *DefaultNoteRepository) SetCurrentVersionIf(ctx context.Context, noteID, expectedID, versionID int64) (bool, error) {
	result := conn(ctx, d.db).
		Model(&entity.Note{}).
		Where("id = ? AND current_version_id = ?", noteID, expectedID).
		Updates(map[string]any{
			"current_version_id": versionID,
			"updated_at":         utils.NowUTC(),
		})

	if result.Error != nil {
		return false, wrap(result.Error, "swapping note pointer")
	}
	return result.RowsAffected > 0, nil
}

// FindInconsistentIDs lists notes whose pointer is unset or does not resolve
// to one of their own versions.
func (d *DefaultNoteRepository) FindInconsistentIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := conn(ctx, d.db).
		Table("notes").
		Joins(currentVersionJoin).
		Where("note_versions.id IS NULL").
		Order("notes.id ASC").
		Pluck("notes.id", &ids).Error

	if err != nil {
		return nil, wrap(err, "finding inconsistent notes")
	}
	return ids, nil
}
