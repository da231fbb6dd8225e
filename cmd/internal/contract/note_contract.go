package contract

type CreateNoteRequest struct {
	UserID  int64  `json:"userId" validate:"required,min=1"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ReviseNoteRequest carries a partial edit. Omitted fields are taken from the
// note's active version.
type ReviseNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`

	// ExpectedVersionID turns the pointer move into a compare-and-swap
	// against the version the caller based the edit on.
	ExpectedVersionID *int64 `json:"expectedVersionId,omitempty"`
}

// Snapshot is the merged title/content pair about to become a version.
type Snapshot struct {
	Title   string `validate:"required"`
	Content string `validate:"required"`
}

type NoteResponse struct {
	ID               int64   `json:"id"`
	UserID           int64   `json:"userId"`
	CurrentVersionID *int64  `json:"currentVersionId"`
	Title            *string `json:"title"`
	Content          *string `json:"content"`
	VersionCount     int64   `json:"versionCount"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

type NoteSummaryResponse struct {
	ID               int64   `json:"id"`
	UserID           int64   `json:"userId"`
	CurrentVersionID *int64  `json:"currentVersionId"`
	Title            *string `json:"title"`
	UpdatedAt        string  `json:"updatedAt"`
}

type VersionResponse struct {
	ID        int64  `json:"id"`
	NoteID    int64  `json:"noteId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type CreateNoteResponse struct {
	NoteID  int64            `json:"noteId"`
	Version *VersionResponse `json:"version"`
}

// NoteVersionRef names the version a note points at after a revise or restore.
type NoteVersionRef struct {
	NoteID    int64 `json:"noteId"`
	VersionID int64 `json:"versionId"`
}

type RepairReport struct {
	Found      int     `json:"found"`
	Repaired   []int64 `json:"repaired"`
	Unrepaired []int64 `json:"unrepaired"`
}

type ExportResponse struct {
	NoteID   int64  `json:"noteId"`
	Key      string `json:"key"`
	Versions int    `json:"versions"`
}

// HistoryExport is the document written to the archive bucket.
type HistoryExport struct {
	NoteID           int64              `json:"noteId"`
	UserID           int64              `json:"userId"`
	CurrentVersionID *int64             `json:"currentVersionId"`
	ExportedAt       string             `json:"exportedAt"`
	Versions         []*VersionResponse `json:"versions"`
}
