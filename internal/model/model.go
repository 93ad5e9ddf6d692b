package model

import "time"

type Course struct {
	ID string
}

// Member is one person-in-course record. Name fields are pointers because
// null (never supplied) is distinct from the empty string.
type Member struct {
	Username  string
	FirstName *string
	LastName  *string
	Email     *string
}

const (
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

type Assignment struct {
	CourseID string
	ID       string
}

type Submission struct {
	ID           string
	CourseID     string
	AssignmentID string
	StudentID    string
	CreatedAt    time.Time
}

// SubmissionRef identifies one ledger entry without its files.
type SubmissionRef struct {
	StudentID string
	CreatedAt time.Time
}

// FileRecord is one (path -> blob) mapping inside a file set.
type FileRecord struct {
	Path     string
	BlobName string
	Checksum string
}

// FileContent is a fetched file; Content is nil in list-only mode.
type FileContent struct {
	Path     string
	Checksum string
	Content  []byte
}
