package entity

import "gorm.io/gorm"

// NoteVersion is an immutable snapshot of a note's title and content.
// Versions of a note are ordered by ID.
type NoteVersion struct {
	ID        int64  `gorm:"primaryKey"`
	NoteID    int64  `gorm:"not null;index"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false"`
}

// BeforeCreate rejects snapshots missing a title or content, whoever the caller is.
func (v *NoteVersion) BeforeCreate(_ *gorm.DB) error {
	if v.Title == "" || v.Content == "" {
		return ErrEmptySnapshot
	}
	return nil
}

// BeforeUpdate keeps versions write-once.
func (v *NoteVersion) BeforeUpdate(_ *gorm.DB) error {
	return ErrVersionImmutable
}
