package entity

// Note is a document whose visible content is whatever NoteVersion its
// CurrentVersionID designates.
//
// CurrentVersionID has no foreign key. The service layer checks that it
// points at one of the note's own versions.
type Note struct {
	ID               int64  `gorm:"primaryKey"`
	CurrentVersionID *int64 `gorm:"index"`
	UserID           int64  `gorm:"not null;index"`
	CreatedAt        int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        int64  `gorm:"not null;autoUpdateTime:false"`

	// Relations
	Versions []NoteVersion `gorm:"foreignKey:NoteID;references:ID;constraint:OnDelete:CASCADE;"`
}

// NoteDetail is a Note joined with its active version. Title and Content are
// nil when the pointer is unset or does not resolve to one of the note's own
// versions.
type NoteDetail struct {
	ID               int64
	UserID           int64
	CurrentVersionID *int64
	Title            *string
	Content          *string
	VersionCount     int64
	CreatedAt        int64
	UpdatedAt        int64
}

// NoteSummary is the listing projection of a note.
type NoteSummary struct {
	ID               int64
	UserID           int64
	CurrentVersionID *int64
	Title            *string
	UpdatedAt        int64
}
