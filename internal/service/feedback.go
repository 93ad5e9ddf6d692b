package service

import (
	"context"
	"encoding/json"

	"github.com/ykazakov/courseshare/internal/authz"
	"github.com/ykazakov/courseshare/internal/model"
)

// UploadFeedback attaches a feedback file set to the submission with the
// exact given timestamp, replacing any prior feedback wholesale.
func (s *Service) UploadFeedback(ctx context.Context, actor, courseID, assignmentID, studentID, timestampRaw string, filesRaw json.RawMessage) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	if err := s.requireAssignment(ctx, courseID, assignmentID); err != nil {
		return err
	}
	if err := s.requireStudent(ctx, courseID, studentID); err != nil {
		return err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return err
	}
	in.Target = studentID
	if err := s.authorize(authz.ActionManageFeedback, in); err != nil {
		return err
	}
	if timestampRaw == "" {
		return errSupplyTimestamp
	}
	sub, err := s.findSubmission(ctx, courseID, assignmentID, studentID, timestampRaw)
	if err != nil {
		return err
	}
	entries, err := parseFiles(filesRaw)
	if err != nil {
		return err
	}
	records, err := s.storeEntries(submissionDir(courseID, assignmentID, studentID), entries)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceFeedback(ctx, sub.ID, records); err != nil {
		return errInternal(err)
	}
	return nil
}

// DownloadFeedback fetches the feedback file set for the submission with the
// exact given timestamp; instructors and the submission owner may read it.
func (s *Service) DownloadFeedback(ctx context.Context, actor, courseID, assignmentID, studentID, timestampRaw string, listOnly bool) ([]model.FileContent, error) {
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
	if timestampRaw == "" {
		return nil, errSupplyTimestamp
	}
	sub, err := s.findSubmission(ctx, courseID, assignmentID, studentID, timestampRaw)
	if err != nil {
		return nil, err
	}
	records, err := s.store.FeedbackFiles(ctx, sub.ID)
	if err != nil {
		return nil, errInternal(err)
	}
	return s.fetchFiles(submissionDir(courseID, assignmentID, studentID), records, listOnly)
}
