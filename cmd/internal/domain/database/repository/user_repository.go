package repository

import (
	"context"

	"notehistory/cmd/internal/domain/entity"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	err := conn(ctx, u.db).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, wrap(err, "fetching user")
	}
	return &user, nil
}

func (u *DefaultUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := conn(ctx, u.db).
		Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, wrap(err, "checking email")
	}
	return count > 0, nil
}

// FindPageWithCounts lists users by id with how many notes and versions they
// own. Users without notes are included with zero counts.
func (u *DefaultUserRepository) FindPageWithCounts(ctx context.Context, offset, limit int) ([]*entity.UserSummary, error) {
	users := make([]*entity.UserSummary, 0, limit)
	err := conn(ctx, u.db).
		Table("users").
		Select("users.id, users.name, users.age, users.email, " +
			"COUNT(DISTINCT notes.id) AS notes_count, COUNT(note_versions.id) AS versions_count").
		Joins("LEFT JOIN notes ON notes.user_id = users.id").
		Joins("LEFT JOIN note_versions ON note_versions.note_id = notes.id").
		Group("users.id, users.name, users.age, users.email").
		Order("users.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&users).Error

	if err != nil {
		return nil, wrap(err, "listing users")
	}
	return users, nil
}

func (u *DefaultUserRepository) Save(ctx context.Context, user *entity.User) error {
	return wrap(conn(ctx, u.db).Omit("Notes").Save(user).Error, "saving user")
}

// Delete removes the user with every note and version it owns. It reports
// false when no such user exists.
func (u *DefaultUserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := conn(ctx, u.db).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&entity.Note{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("note_id IN (?)", owned).Delete(&entity.NoteVersion{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&entity.Note{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.User{}, id)
		deleted = result.RowsAffected > 0
		return result.Error
	})
	return deleted, wrap(err, "deleting user")
}
