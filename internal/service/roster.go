package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/ykazakov/courseshare/internal/authz"
	"github.com/ykazakov/courseshare/internal/model"
)

// MemberForm carries the rename/add fields. Pointers distinguish a missing
// field from an explicit empty string.
type MemberForm struct {
	FirstName *string
	LastName  *string
	Email     *string
}

func (f MemberForm) validate() error {
	if f.FirstName == nil {
		return errSupplyFirstName
	}
	if f.LastName == nil {
		return errSupplyLastName
	}
	if f.Email == nil {
		return errSupplyEmail
	}
	return nil
}

// StudentStatus is one entry of a bulk student add result.
type StudentStatus struct {
	Username string
	Success  bool
	Message  string
}

// AddInstructor adds or renames an instructor record. A current student of
// the course is upgraded, dropping the student role.
func (s *Service) AddInstructor(ctx context.Context, actor, courseID, username string, form MemberForm) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return err
	}
	in.Target = username
	targetRole, err := s.store.MemberRole(ctx, courseID, username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return errInternal(err)
	}
	in.TargetInstructor = targetRole == model.RoleInstructor
	if err := s.authorize(authz.ActionModifyInstructor, in); err != nil {
		return err
	}
	if err := form.validate(); err != nil {
		return err
	}
	member := model.Member{Username: username, FirstName: form.FirstName, LastName: form.LastName, Email: form.Email}
	if err := s.store.UpsertMember(ctx, courseID, model.RoleInstructor, member); err != nil {
		return errInternal(err)
	}
	return nil
}

func (s *Service) GetInstructor(ctx context.Context, actor, courseID, username string) (model.Member, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return model.Member{}, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return model.Member{}, err
	}
	if err := s.authorize(authz.ActionReadRoster, in); err != nil {
		return model.Member{}, err
	}
	member, err := s.store.GetMember(ctx, courseID, model.RoleInstructor, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Member{}, errInstructorNotFound
	}
	if err != nil {
		return model.Member{}, errInternal(err)
	}
	return member, nil
}

func (s *Service) RemoveInstructor(ctx context.Context, actor, courseID, username string) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	if err := s.authorize(authz.ActionRemoveInstructor, authz.Input{Actor: actor, Admin: s.isAdmin(actor), Target: username}); err != nil {
		return err
	}
	if _, err := s.store.GetMember(ctx, courseID, model.RoleInstructor, username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errInstructorNotFound
		}
		return errInternal(err)
	}
	if err := s.store.RemoveMember(ctx, courseID, model.RoleInstructor, username); err != nil {
		return errInternal(err)
	}
	return nil
}

func (s *Service) ListInstructors(ctx context.Context, actor, courseID string) ([]model.Member, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.ActionReadRoster, in); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, courseID, model.RoleInstructor)
	if err != nil {
		return nil, errInternal(err)
	}
	return members, nil
}

// AddStudent adds or renames one student record. A username currently
// holding the instructor role is rejected.
func (s *Service) AddStudent(ctx context.Context, actor, courseID, username string, form MemberForm) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return err
	}
	in.Target = username
	if err := s.authorize(authz.ActionManageStudents, in); err != nil {
		return err
	}
	if err := form.validate(); err != nil {
		return err
	}
	return s.addStudentRecord(ctx, courseID, model.Member{
		Username:  username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
	})
}

func (s *Service) addStudentRecord(ctx context.Context, courseID string, member model.Member) error {
	targetRole, err := s.store.MemberRole(ctx, courseID, member.Username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return errInternal(err)
	}
	if targetRole == model.RoleInstructor {
		return errInstructorAsStudent
	}
	if err := s.store.UpsertMember(ctx, courseID, model.RoleStudent, member); err != nil {
		return errInternal(err)
	}
	return nil
}

// AddStudents adds a batch of students from a raw JSON list. Entries fail
// individually; the per-entry outcome is reported instead of aborting the
// batch.
func (s *Service) AddStudents(ctx context.Context, actor, courseID string, studentsRaw json.RawMessage) ([]StudentStatus, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.ActionManageStudents, in); err != nil {
		return nil, err
	}
	if studentsRaw == nil {
		return nil, errSupplyStudents
	}
	var payload []struct {
		Username  *string `json:"username"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
	}
	if err := json.Unmarshal(studentsRaw, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errBadFormat
		}
		return nil, errStudentsDecode
	}
	if len(payload) == 0 {
		return nil, errSupplyStudents
	}
	for _, entry := range payload {
		if entry.Username == nil || entry.FirstName == nil || entry.LastName == nil || entry.Email == nil {
			return nil, errBadFormat
		}
	}
	status := make([]StudentStatus, 0, len(payload))
	for _, entry := range payload {
		member := model.Member{
			Username:  *entry.Username,
			FirstName: entry.FirstName,
			LastName:  entry.LastName,
			Email:     entry.Email,
		}
		if err := s.addStudentRecord(ctx, courseID, member); err != nil {
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				return nil, err
			}
			status = append(status, StudentStatus{Username: member.Username, Message: apiErr.Message})
			continue
		}
		status = append(status, StudentStatus{Username: member.Username, Success: true})
	}
	return status, nil
}

func (s *Service) GetStudent(ctx context.Context, actor, courseID, username string) (model.Member, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return model.Member{}, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return model.Member{}, err
	}
	if err := s.authorize(authz.ActionManageStudents, in); err != nil {
		return model.Member{}, err
	}
	member, err := s.store.GetMember(ctx, courseID, model.RoleStudent, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Member{}, errStudentNotFound
	}
	if err != nil {
		return model.Member{}, errInternal(err)
	}
	return member, nil
}

func (s *Service) RemoveStudent(ctx context.Context, actor, courseID, username string) error {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return err
	}
	if err := s.authorize(authz.ActionManageStudents, in); err != nil {
		return err
	}
	if err := s.requireStudent(ctx, courseID, username); err != nil {
		return err
	}
	if err := s.store.RemoveMember(ctx, courseID, model.RoleStudent, username); err != nil {
		return errInternal(err)
	}
	return nil
}

func (s *Service) ListStudents(ctx context.Context, actor, courseID string) ([]model.Member, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	in, err := s.relation(ctx, courseID, actor)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.ActionManageStudents, in); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, courseID, model.RoleStudent)
	if err != nil {
		return nil, errInternal(err)
	}
	return members, nil
}
