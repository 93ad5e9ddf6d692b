// Package service implements the exchange's operations: course and roster
// management, assignment release, the submission ledger and feedback. Every
// operation takes the resolved actor username, consults the access control
// engine in a fixed check order (course, assignment, person, role, business
// rule) and returns either a payload or a *Error with status and message.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"

	"github.com/jackc/pgx/v5"

	"github.com/ykazakov/courseshare/internal/authz"
	"github.com/ykazakov/courseshare/internal/fileset"
	"github.com/ykazakov/courseshare/internal/model"
	"github.com/ykazakov/courseshare/internal/repository"
	"github.com/ykazakov/courseshare/internal/storage"
)

type Service struct {
	store  *repository.Store
	blobs  *storage.Store
	clock  Generator
	admins map[string]struct{}
}

func New(store *repository.Store, blobs *storage.Store, admins []string) *Service {
	adminSet := make(map[string]struct{}, len(admins))
	for _, username := range admins {
		adminSet[username] = struct{}{}
	}
	return &Service{store: store, blobs: blobs, admins: adminSet}
}

func (s *Service) isAdmin(username string) bool {
	_, ok := s.admins[username]
	return ok
}

// relation gathers the authorization facts for an actor and course.
func (s *Service) relation(ctx context.Context, courseID, actor string) (authz.Input, error) {
	in := authz.Input{Actor: actor, Admin: s.isAdmin(actor)}
	role, err := s.store.MemberRole(ctx, courseID, actor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return in, nil
		}
		return in, errInternal(err)
	}
	in.Instructor = role == model.RoleInstructor
	in.Student = role == model.RoleStudent
	return in, nil
}

func (s *Service) authorize(action authz.Action, in authz.Input) error {
	if err := authz.Authorize(action, in); err != nil {
		return &Error{Status: http.StatusForbidden, Message: err.Error()}
	}
	return nil
}

func (s *Service) requireCourse(ctx context.Context, courseID string) error {
	exists, err := s.store.CourseExists(ctx, courseID)
	if err != nil {
		return errInternal(err)
	}
	if !exists {
		return errCourseNotFound
	}
	return nil
}

func (s *Service) requireAssignment(ctx context.Context, courseID, assignmentID string) error {
	exists, err := s.store.AssignmentExists(ctx, courseID, assignmentID)
	if err != nil {
		return errInternal(err)
	}
	if !exists {
		return errAssignmentNotFound
	}
	return nil
}

func (s *Service) requireStudent(ctx context.Context, courseID, studentID string) error {
	_, err := s.store.GetMember(ctx, courseID, model.RoleStudent, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return errStudentNotFound
	}
	if err != nil {
		return errInternal(err)
	}
	return nil
}

// parseFiles turns a raw file-list payload into decoded entries, mapping
// validation failures to their user-facing errors. A nil payload means the
// field was never supplied.
func parseFiles(raw json.RawMessage) ([]fileset.Entry, error) {
	if raw == nil {
		return nil, errSupplyFiles
	}
	entries, err := fileset.Parse(raw)
	switch {
	case err == nil:
		return entries, nil
	case errors.Is(err, fileset.ErrDecode):
		return nil, errFilesDecode
	case errors.Is(err, fileset.ErrFormat):
		return nil, errBadFormat
	case errors.Is(err, fileset.ErrIllegalPath):
		return nil, errIllegalPath
	case errors.Is(err, fileset.ErrEncoding):
		return nil, errContentEncoding
	default:
		return nil, errInternal(err)
	}
}

// storeEntries persists every decoded file and returns the records to attach
// to the owning entity. Nothing is recorded in the database until all blobs
// are written.
func (s *Service) storeEntries(dir string, entries []fileset.Entry) ([]model.FileRecord, error) {
	records := make([]model.FileRecord, 0, len(entries))
	for _, entry := range entries {
		blob, err := s.blobs.Write(dir, entry.Path, entry.Content)
		if errors.Is(err, storage.ErrNameConflict) {
			return nil, errFilenameConflict
		}
		if err != nil {
			return nil, errInternal(err)
		}
		records = append(records, model.FileRecord{Path: entry.Path, BlobName: blob.Name, Checksum: blob.Checksum})
	}
	return records, nil
}

func (s *Service) fetchFiles(dir string, records []model.FileRecord, listOnly bool) ([]model.FileContent, error) {
	files := make([]model.FileContent, 0, len(records))
	for _, record := range records {
		file := model.FileContent{Path: record.Path, Checksum: record.Checksum}
		if !listOnly {
			content, err := s.blobs.Read(dir, record.BlobName)
			if err != nil {
				return nil, errInternal(err)
			}
			file.Content = content
		}
		files = append(files, file)
	}
	return files, nil
}

func assignmentDir(courseID, assignmentID string) string {
	return path.Join(courseID, assignmentID)
}

func submissionDir(courseID, assignmentID, studentID string) string {
	return path.Join(courseID, assignmentID, studentID)
}
