package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ykazakov/courseshare/internal/model"
)

func (s *Store) AssignmentExists(ctx context.Context, courseID, assignmentID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM assignments WHERE course_id = $1 AND id = $2)
	`, courseID, assignmentID).Scan(&exists)
	return exists, err
}

func (s *Store) ListAssignments(ctx context.Context, courseID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM assignments WHERE course_id = $1 ORDER BY id
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// CreateAssignment records the assignment and its released file set in one
// transaction, so a half-released assignment is never visible.
func (s *Store) CreateAssignment(ctx context.Context, courseID, assignmentID string, files []model.FileRecord) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO assignments (course_id, id) VALUES ($1, $2)
		`, courseID, assignmentID); err != nil {
			return translateErr(err)
		}
		for _, file := range files {
			if _, err := tx.Exec(ctx, `
				INSERT INTO assignment_files (course_id, assignment_id, path, blob_name, checksum)
				VALUES ($1, $2, $3, $4, $5)
			`, courseID, assignmentID, file.Path, file.BlobName, file.Checksum); err != nil {
				return translateErr(err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteAssignment(ctx context.Context, courseID, assignmentID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM assignments WHERE course_id = $1 AND id = $2
	`, courseID, assignmentID)
	return err
}

func (s *Store) AssignmentFiles(ctx context.Context, courseID, assignmentID string) ([]model.FileRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, blob_name, checksum
		FROM assignment_files
		WHERE course_id = $1 AND assignment_id = $2
		ORDER BY path
	`, courseID, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFileRecords(rows)
}

func scanFileRecords(rows pgx.Rows) ([]model.FileRecord, error) {
	files := []model.FileRecord{}
	for rows.Next() {
		var file model.FileRecord
		if err := rows.Scan(&file.Path, &file.BlobName, &file.Checksum); err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}
