package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ykazakov/courseshare/internal/model"
)

// InsertSubmission appends one ledger entry with its file set atomically.
func (s *Store) InsertSubmission(ctx context.Context, sub model.Submission, files []model.FileRecord) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO submissions (id, course_id, assignment_id, student_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, sub.ID, sub.CourseID, sub.AssignmentID, sub.StudentID, sub.CreatedAt); err != nil {
			return translateErr(err)
		}
		for _, file := range files {
			if _, err := tx.Exec(ctx, `
				INSERT INTO submission_files (submission_id, path, blob_name, checksum)
				VALUES ($1, $2, $3, $4)
			`, sub.ID, file.Path, file.BlobName, file.Checksum); err != nil {
				return translateErr(err)
			}
		}
		return nil
	})
}

// ListSubmissions returns ledger entries for an assignment in creation order,
// optionally scoped to one student via ListStudentSubmissions.
func (s *Store) ListSubmissions(ctx context.Context, courseID, assignmentID string) ([]model.SubmissionRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT student_id, created_at
		FROM submissions
		WHERE course_id = $1 AND assignment_id = $2
		ORDER BY created_at
	`, courseID, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissionRefs(rows)
}

func (s *Store) ListStudentSubmissions(ctx context.Context, courseID, assignmentID, studentID string) ([]model.SubmissionRef, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT student_id, created_at
		FROM submissions
		WHERE course_id = $1 AND assignment_id = $2 AND student_id = $3
		ORDER BY created_at
	`, courseID, assignmentID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissionRefs(rows)
}

func (s *Store) LatestSubmission(ctx context.Context, courseID, assignmentID, studentID string) (model.Submission, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, course_id, assignment_id, student_id, created_at
		FROM submissions
		WHERE course_id = $1 AND assignment_id = $2 AND student_id = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, courseID, assignmentID, studentID)
	return scanSubmission(row)
}

// SubmissionAt requires an exact timestamp match.
func (s *Store) SubmissionAt(ctx context.Context, courseID, assignmentID, studentID string, at time.Time) (model.Submission, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, course_id, assignment_id, student_id, created_at
		FROM submissions
		WHERE course_id = $1 AND assignment_id = $2 AND student_id = $3 AND created_at = $4
	`, courseID, assignmentID, studentID, at)
	return scanSubmission(row)
}

func (s *Store) SubmissionFiles(ctx context.Context, submissionID string) ([]model.FileRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, blob_name, checksum
		FROM submission_files
		WHERE submission_id = $1
		ORDER BY path
	`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFileRecords(rows)
}

// ReplaceFeedback swaps the feedback file set wholesale; the previous mapping
// is dropped in the same transaction.
func (s *Store) ReplaceFeedback(ctx context.Context, submissionID string, files []model.FileRecord) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM feedback_files WHERE submission_id = $1
		`, submissionID); err != nil {
			return err
		}
		for _, file := range files {
			if _, err := tx.Exec(ctx, `
				INSERT INTO feedback_files (submission_id, path, blob_name, checksum)
				VALUES ($1, $2, $3, $4)
			`, submissionID, file.Path, file.BlobName, file.Checksum); err != nil {
				return translateErr(err)
			}
		}
		return nil
	})
}

func (s *Store) FeedbackFiles(ctx context.Context, submissionID string) ([]model.FileRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, blob_name, checksum
		FROM feedback_files
		WHERE submission_id = $1
		ORDER BY path
	`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFileRecords(rows)
}

func scanSubmission(row pgx.Row) (model.Submission, error) {
	var sub model.Submission
	err := row.Scan(&sub.ID, &sub.CourseID, &sub.AssignmentID, &sub.StudentID, &sub.CreatedAt)
	return sub, err
}

func scanSubmissionRefs(rows pgx.Rows) ([]model.SubmissionRef, error) {
	refs := []model.SubmissionRef{}
	for rows.Next() {
		var ref model.SubmissionRef
		if err := rows.Scan(&ref.StudentID, &ref.CreatedAt); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
