package entity

// User owns notes. It carries no history of its own.
type User struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"not null"`
	Age   int    `gorm:"not null"`
	Email string `gorm:"not null;uniqueIndex"`

	// Relations
	Notes []Note `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
}

// UserSummary is a User row enriched with aggregate counts of what it owns.
type UserSummary struct {
	ID            int64
	Name          string
	Age           int
	Email         string
	NotesCount    int64
	VersionsCount int64
}
