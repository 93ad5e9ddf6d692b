package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ykazakov/courseshare/internal/authz"
	"github.com/ykazakov/courseshare/internal/repository"
)

// ListCourses returns every course for an admin, otherwise the courses the
// actor belongs to in either role.
func (s *Service) ListCourses(ctx context.Context, actor string) ([]string, error) {
	var (
		courses []string
		err     error
	)
	if s.isAdmin(actor) {
		courses, err = s.store.ListCourses(ctx)
	} else {
		courses, err = s.store.ListCoursesFor(ctx, actor)
	}
	if err != nil {
		return nil, errInternal(err)
	}
	return courses, nil
}

// CreateCourse creates a course, optionally with initial instructors given as
// a raw JSON list of usernames. The creating admin is not enrolled.
func (s *Service) CreateCourse(ctx context.Context, actor, courseID string, instructorsRaw json.RawMessage) error {
	if err := s.authorize(authz.ActionManageCourse, authz.Input{Actor: actor, Admin: s.isAdmin(actor)}); err != nil {
		return err
	}
	var instructors []string
	if instructorsRaw != nil {
		if err := json.Unmarshal(instructorsRaw, &instructors); err != nil {
			return errInstructorsDecode
		}
	}
	err := s.store.CreateCourse(ctx, courseID, instructors)
	if errors.Is(err, repository.ErrDuplicate) {
		return errCourseExists
	}
	if err != nil {
		return errInternal(err)
	}
	return nil
}

// DeleteCourse destroys a course and everything below it: roster,
// assignments, submissions, feedback and the stored blobs.
func (s *Service) DeleteCourse(ctx context.Context, actor, courseID string) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	if err := s.authorize(authz.ActionManageCourse, authz.Input{Actor: actor, Admin: s.isAdmin(actor)}); err != nil {
		return err
	}
	if err := s.store.DeleteCourse(ctx, courseID); err != nil {
		return errInternal(err)
	}
	if err := s.blobs.RemoveDir(courseID); err != nil {
		return errInternal(err)
	}
	return nil
}
