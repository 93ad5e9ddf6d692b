package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ykazakov/courseshare/internal/model"
)

func (s *Store) CourseExists(ctx context.Context, courseID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, courseID).Scan(&exists)
	return exists, err
}

// CreateCourse inserts a course together with its initial instructor records,
// which carry null name fields until renamed.
func (s *Store) CreateCourse(ctx context.Context, courseID string, instructors []string) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO courses (id) VALUES ($1)`, courseID); err != nil {
			return translateErr(err)
		}
		for _, username := range instructors {
			_, err := tx.Exec(ctx, `
				INSERT INTO roster (course_id, username, role)
				VALUES ($1, $2, $3)
				ON CONFLICT (course_id, username) DO UPDATE SET role = EXCLUDED.role
			`, courseID, username, model.RoleInstructor)
			if err != nil {
				return translateErr(err)
			}
		}
		return nil
	})
}

func (s *Store) DeleteCourse(ctx context.Context, courseID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	return err
}

func (s *Store) ListCourses(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// ListCoursesFor returns the ids of every course the user belongs to, in
// either role.
func (s *Store) ListCoursesFor(ctx context.Context, username string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT course_id FROM roster WHERE username = $1 ORDER BY course_id
	`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	out := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}
