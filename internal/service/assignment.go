package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ykazakov/courseshare/internal/authz"
	"github.com/ykazakov/courseshare/internal/model"
	"github.com/ykazakov/courseshare/internal/repository"
)

func (s *Service) ListAssignments(ctx context.Context, actor, courseID string) ([]string, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.ActionReadAssignments, in); err != nil {
		return nil, err
	}
	assignments, err := s.store.ListAssignments(ctx, courseID)
	if err != nil {
		return nil, errInternal(err)
	}
	return assignments, nil
}

// DownloadAssignment fetches the released file set; in list-only mode the
// contents stay on disk and only paths and checksums are returned.
func (s *Service) DownloadAssignment(ctx context.Context, actor, courseID, assignmentID string, listOnly bool) ([]model.FileContent, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.requireAssignment(ctx, courseID, assignmentID); err != nil {
		return nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.ActionReadAssignments, in); err != nil {
		return nil, err
	}
	records, err := s.store.AssignmentFiles(ctx, courseID, assignmentID)
	if err != nil {
		return nil, errInternal(err)
	}
	return s.fetchFiles(assignmentDir(courseID, assignmentID), records, listOnly)
}

// ReleaseAssignment publishes a new assignment with its file set,
// all-or-nothing: any invalid entry rejects the whole payload before any
// record is written.
func (s *Service) ReleaseAssignment(ctx context.Context, actor, courseID, assignmentID string, filesRaw json.RawMessage) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return err
	}
	if err := s.authorize(authz.ActionManageAssignments, in); err != nil {
		return err
	}
	if filesRaw == nil {
		return errSupplyFiles
	}
	exists, err := s.store.AssignmentExists(ctx, courseID, assignmentID)
	if err != nil {
		return errInternal(err)
	}
	if exists {
		return errAssignmentExists
	}
	entries, err := parseFiles(filesRaw)
	if err != nil {
		return err
	}
	records, err := s.storeEntries(assignmentDir(courseID, assignmentID), entries)
	if err != nil {
		return err
	}
	err = s.store.CreateAssignment(ctx, courseID, assignmentID, records)
	if errors.Is(err, repository.ErrDuplicate) {
		return errAssignmentExists
	}
	if err != nil {
		return errInternal(err)
	}
	return nil
}

func (s *Service) DeleteAssignment(ctx context.Context, actor, courseID, assignmentID string) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return err
	}
	if err := s.authorize(authz.ActionManageAssignments, in); err != nil {
		return err
	}
	if err := s.requireAssignment(ctx, courseID, assignmentID); err != nil {
		return err
	}
	if err := s.store.DeleteAssignment(ctx, courseID, assignmentID); err != nil {
		return errInternal(err)
	}
	if err := s.blobs.RemoveDir(assignmentDir(courseID, assignmentID)); err != nil {
		return errInternal(err)
	}
	return nil
}
