package repository

import (
	"context"

	"notehistory/cmd/internal/domain/entity"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type DefaultVersionRepository struct {
	db *gorm.DB
}

func NewVersionRepository(db *gorm.DB) *DefaultVersionRepository {
	return &DefaultVersionRepository{db: db}
}

func (v *DefaultVersionRepository) Create(ctx context.Context, version *entity.NoteVersion) error {
	return wrap(conn(ctx, v.db).Create(version).Error, "inserting version")
}

func (v *DefaultVersionRepository) FindByID(ctx context.Context, id int64) (*entity.NoteVersion, error) {
	var version entity.NoteVersion
	err := conn(ctx, v.db).First(&version, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, wrap(err, "fetching version")
	}
	return &version, nil
}

// FindByNoteID returns the whole history of a note, oldest first.
func (v *DefaultVersionRepository) FindByNoteID(ctx context.Context, noteID int64) ([]*entity.NoteVersion, error) {
	versions := make([]*entity.NoteVersion, 0)
	err := conn(ctx, v.db).
		Where("note_id = ?", noteID).
		Order("id ASC").
		Find(&versions).Error

	if err != nil {
		return nil, wrap(err, "listing versions")
	}
	return versions, nil
}

func (v *DefaultVersionRepository) FindLatestByNoteID(ctx context.Context, noteID int64) (*entity.NoteVersion, error) {
	var version entity.NoteVersion
	err := conn(ctx, v.db).
		Where("note_id = ?", noteID).
		Order("id DESC").
		First(&version).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, wrap(err, "fetching latest version")
	}
	return &version, nil
}

func (v *DefaultVersionRepository) CountByNoteID(ctx context.Context, noteID int64) (int64, error) {
	var count int64
	err := conn(ctx, v.db).
		Model(&entity.NoteVersion{}).
		Where("note_id = ?", noteID).
		Count(&count).Error
	return count, wrap(err, "counting versions")
}
