package repository

import "context"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS courses (
		id text PRIMARY KEY
	)`,
	// One row per (course, person). The primary key makes the instructor and
	// student sets of a course disjoint by construction.
	`CREATE TABLE IF NOT EXISTS roster (
		course_id  text NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		username   text NOT NULL,
		role       text NOT NULL CHECK (role IN ('instructor', 'student')),
		first_name text,
		last_name  text,
		email      text,
		PRIMARY KEY (course_id, username)
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		course_id  text NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		id         text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (course_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS assignment_files (
		course_id     text NOT NULL,
		assignment_id text NOT NULL,
		path          text NOT NULL,
		blob_name     text NOT NULL,
		checksum      text NOT NULL,
		PRIMARY KEY (course_id, assignment_id, path),
		FOREIGN KEY (course_id, assignment_id)
			REFERENCES assignments(course_id, id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id            uuid PRIMARY KEY,
		course_id     text NOT NULL,
		assignment_id text NOT NULL,
		student_id    text NOT NULL,
		created_at    timestamptz NOT NULL,
		UNIQUE (course_id, assignment_id, student_id, created_at),
		FOREIGN KEY (course_id, assignment_id)
			REFERENCES assignments(course_id, id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS submission_files (
		submission_id uuid NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
		path          text NOT NULL,
		blob_name     text NOT NULL,
		checksum      text NOT NULL,
		PRIMARY KEY (submission_id, path)
	)`,
	`CREATE TABLE IF NOT EXISTS feedback_files (
		submission_id uuid NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
		path          text NOT NULL,
		blob_name     text NOT NULL,
		checksum      text NOT NULL,
		PRIMARY KEY (submission_id, path)
	)`,
}

// EnsureSchema creates all tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
