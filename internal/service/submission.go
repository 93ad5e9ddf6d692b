package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ykazakov/courseshare/internal/authz"
	"github.com/ykazakov/courseshare/internal/model"
)

// ListSubmissions returns every student's ledger entries for an assignment in
// creation order.
func (s *Service) ListSubmissions(ctx context.Context, actor, courseID, assignmentID string) ([]model.SubmissionRef, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.ActionReadSubmissions, in); err != nil {
		return nil, err
	}
	if err := s.requireAssignment(ctx, courseID, assignmentID); err != nil {
		return nil, err
	}
	refs, err := s.store.ListSubmissions(ctx, courseID, assignmentID)
	if err != nil {
		return nil, errInternal(err)
	}
	return refs, nil
}

// ListStudentSubmissions returns one student's ledger entries; allowed for
// course instructors and for the student themself.
func (s *Service) ListStudentSubmissions(ctx context.Context, actor, courseID, assignmentID, studentID string) ([]model.SubmissionRef, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.requireAssignment(ctx, courseID, assignmentID); err != nil {
		return nil, err
	}
	if err := s.requireStudent(ctx, courseID, studentID); err != nil {
		return nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}
	in.Target = studentID
	if err := s.authorize(authz.ActionReadStudentWork, in); err != nil {
		return nil, err
	}
	refs, err := s.store.ListStudentSubmissions(ctx, courseID, assignmentID, studentID)
	if err != nil {
		return nil, errInternal(err)
	}
	return refs, nil
}

// Submit appends a submission under the actor's own name with a freshly
// generated timestamp strictly greater than every prior one.
func (s *Service) Submit(ctx context.Context, actor, courseID, assignmentID string, filesRaw json.RawMessage) (time.Time, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return time.Time{}, err
	}
	if err := s.requireAssignment(ctx, courseID, assignmentID); err != nil {
		return time.Time{}, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return time.Time{}, err
	}
	if err := s.authorize(authz.ActionSubmit, in); err != nil {
		return time.Time{}, err
	}
	entries, err := parseFiles(filesRaw)
	if err != nil {
		return time.Time{}, err
	}
	records, err := s.storeEntries(submissionDir(courseID, assignmentID, actor), entries)
	if err != nil {
		return time.Time{}, err
	}
	sub := model.Submission{
		ID:           uuid.NewString(),
		CourseID:     courseID,
		AssignmentID: assignmentID,
		StudentID:    actor,
		CreatedAt:    s.clock.Next(),
	}
	if err := s.store.InsertSubmission(ctx, sub, records); err != nil {
		return time.Time{}, errInternal(err)
	}
	return sub.CreatedAt, nil
}

// findSubmission resolves the latest ledger entry, or the exact-timestamp one
// when timestampRaw is non-empty. No nearest-match semantics.
func (s *Service) findSubmission(ctx context.Context, courseID, assignmentID, studentID, timestampRaw string) (model.Submission, error) {
	if timestampRaw == "" {
		sub, err := s.store.LatestSubmission(ctx, courseID, assignmentID, studentID)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Submission{}, errSubmissionNotFound
		}
		if err != nil {
			return model.Submission{}, errInternal(err)
		}
		return sub, nil
	}
	at, err := ParseTimestamp(timestampRaw)
	if err != nil {
		return model.Submission{}, errTimeFormat
	}
	sub, err := s.store.SubmissionAt(ctx, courseID, assignmentID, studentID, at)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Submission{}, errSubmissionNotFound
	}
	if err != nil {
		return model.Submission{}, errInternal(err)
	}
	return sub, nil
}

// DownloadSubmission fetches one submission's file set, the latest by default
// or an exact timestamp when given.
func (s *Service) DownloadSubmission(ctx context.Context, actor, courseID, assignmentID, studentID, timestampRaw string, listOnly bool) (time.Time, []model.FileContent, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return time.Time{}, nil, err
	}
	if err := s.requireAssignment(ctx, courseID, assignmentID); err != nil {
		return time.Time{}, nil, err
	}
	if err := s.requireStudent(ctx, courseID, studentID); err != nil {
		return time.Time{}, nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return time.Time{}, nil, err
	}
	in.Target = studentID
	if err := s.authorize(authz.ActionReadStudentWork, in); err != nil {
		return time.Time{}, nil, err
	}
	sub, err := s.findSubmission(ctx, courseID, assignmentID, studentID, timestampRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	records, err := s.store.SubmissionFiles(ctx, sub.ID)
	if err != nil {
		return time.Time{}, nil, errInternal(err)
	}
	files, err := s.fetchFiles(submissionDir(courseID, assignmentID, studentID), records, listOnly)
	if err != nil {
		return time.Time{}, nil, err
	}
	return sub.CreatedAt, files, nil
}
