package repository

import (
	"context"

	"github.com/ykazakov/courseshare/internal/model"
)

func (s *Store) GetMember(ctx context.Context, courseID, role, username string) (model.Member, error) {
	var member model.Member
	row := s.pool.QueryRow(ctx, `
		SELECT username, first_name, last_name, email
		FROM roster
		WHERE course_id = $1 AND role = $2 AND username = $3
	`, courseID, role, username)
	err := row.Scan(&member.Username, &member.FirstName, &member.LastName, &member.Email)
	return member, err
}

// MemberRole returns the role of the user in the course, or pgx.ErrNoRows
// when the user is not on the roster.
func (s *Store) MemberRole(ctx context.Context, courseID, username string) (string, error) {
	var role string
	err := s.pool.QueryRow(ctx, `
		SELECT role FROM roster WHERE course_id = $1 AND username = $2
	`, courseID, username).Scan(&role)
	return role, err
}

func (s *Store) ListMembers(ctx context.Context, courseID, role string) ([]model.Member, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT username, first_name, last_name, email
		FROM roster
		WHERE course_id = $1 AND role = $2
		ORDER BY username
	`, courseID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := []model.Member{}
	for rows.Next() {
		var member model.Member
		if err := rows.Scan(&member.Username, &member.FirstName, &member.LastName, &member.Email); err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// UpsertMember inserts or updates a roster record. An existing record with
// the other role is taken over, which is how adding an instructor upgrades a
// current student of the same course.
func (s *Store) UpsertMember(ctx context.Context, courseID, role string, member model.Member) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO roster (course_id, username, role, first_name, last_name, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (course_id, username) DO UPDATE
		SET role = EXCLUDED.role,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    email = EXCLUDED.email
	`, courseID, member.Username, role, member.FirstName, member.LastName, member.Email)
	return err
}

func (s *Store) RemoveMember(ctx context.Context, courseID, role, username string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM roster WHERE course_id = $1 AND role = $2 AND username = $3
	`, courseID, role, username)
	return err
}
