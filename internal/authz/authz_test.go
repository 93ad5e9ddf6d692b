package authz

import "testing"

func denialReason(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		return ""
	}
	denial, ok := err.(*Denial)
	if !ok {
		t.Fatalf("expected *Denial, got %T", err)
	}
	return denial.Reason
}

func TestManageCourse(t *testing.T) {
	if err := Authorize(ActionManageCourse, Input{Actor: "root", Admin: true}); err != nil {
		t.Fatalf("expected admin to manage courses, got %v", err)
	}
	err := Authorize(ActionManageCourse, Input{Actor: "eric", Instructor: true})
	if denialReason(t, err) != ReasonNotAdmin {
		t.Fatalf("expected not admin, got %v", err)
	}
}

func TestModifyInstructor(t *testing.T) {
	cases := []struct {
		name   string
		in     Input
		reason string
	}{
		{"admin", Input{Actor: "root", Admin: true, Target: "kevin", TargetInstructor: true}, ""},
		{"self rename", Input{Actor: "kevin", Instructor: true, Target: "kevin", TargetInstructor: true}, ""},
		{"other instructor", Input{Actor: "abigail", Instructor: true, Target: "lawrence", TargetInstructor: true}, ReasonModifyOtherInstructor},
		{"add new person", Input{Actor: "abigail", Instructor: true, Target: "eric"}, ReasonModifyInstructors},
		{"student actor", Input{Actor: "eric", Student: true, Target: "lawrence", TargetInstructor: true}, ReasonNotCourseInstructor},
		{"outsider", Input{Actor: "none", Target: "lawrence", TargetInstructor: true}, ReasonNotCourseInstructor},
	}
	for _, tc := range cases {
		err := Authorize(ActionModifyInstructor, tc.in)
		if got := denialReason(t, err); got != tc.reason {
			t.Fatalf("%s: expected reason %q, got %q", tc.name, tc.reason, got)
		}
	}
}

func TestRemoveInstructorAdminOnly(t *testing.T) {
	err := Authorize(ActionRemoveInstructor, Input{Actor: "abigail", Instructor: true, Target: "lawrence", TargetInstructor: true})
	if denialReason(t, err) != ReasonNotAdmin {
		t.Fatalf("expected not admin, got %v", err)
	}
	if err := Authorize(ActionRemoveInstructor, Input{Actor: "root", Admin: true, Target: "lawrence"}); err != nil {
		t.Fatalf("expected admin to remove instructors, got %v", err)
	}
}

func TestReadRoster(t *testing.T) {
	for _, in := range []Input{
		{Actor: "kevin", Instructor: true},
		{Actor: "lawrence", Student: true},
		{Actor: "root", Admin: true},
	} {
		if err := Authorize(ActionReadRoster, in); err != nil {
			t.Fatalf("expected %s to read roster, got %v", in.Actor, err)
		}
	}
	err := Authorize(ActionReadRoster, Input{Actor: "none"})
	if denialReason(t, err) != ReasonNotRelatedToCourse {
		t.Fatalf("expected not related to course, got %v", err)
	}
}

func TestManageStudents(t *testing.T) {
	err := Authorize(ActionManageStudents, Input{Actor: "eric", Student: true})
	if denialReason(t, err) != ReasonNotCourseInstructor {
		t.Fatalf("expected not course instructor for student, got %v", err)
	}
	err = Authorize(ActionManageStudents, Input{Actor: "none"})
	if denialReason(t, err) != ReasonNotCourseInstructor {
		t.Fatalf("expected not course instructor for outsider, got %v", err)
	}
	if err := Authorize(ActionManageStudents, Input{Actor: "abigail", Instructor: true}); err != nil {
		t.Fatalf("expected instructor to manage students, got %v", err)
	}
	if err := Authorize(ActionManageStudents, Input{Actor: "root", Admin: true}); err != nil {
		t.Fatalf("expected admin override for student management, got %v", err)
	}
}

func TestAssignments(t *testing.T) {
	err := Authorize(ActionReadAssignments, Input{Actor: "eric"})
	if denialReason(t, err) != ReasonNotRelatedToCourse {
		t.Fatalf("expected not related to course, got %v", err)
	}
	if err := Authorize(ActionReadAssignments, Input{Actor: "lawrence", Student: true}); err != nil {
		t.Fatalf("expected student to read assignments, got %v", err)
	}
	err = Authorize(ActionManageAssignments, Input{Actor: "lawrence", Student: true})
	if denialReason(t, err) != ReasonNotCourseInstructor {
		t.Fatalf("expected not course instructor, got %v", err)
	}
	if err := Authorize(ActionManageAssignments, Input{Actor: "kevin", Instructor: true}); err != nil {
		t.Fatalf("expected instructor to release assignments, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	if err := Authorize(ActionSubmit, Input{Actor: "lawrence", Student: true}); err != nil {
		t.Fatalf("expected student to submit, got %v", err)
	}
	if err := Authorize(ActionSubmit, Input{Actor: "kevin", Instructor: true}); err != nil {
		t.Fatalf("expected instructor to submit, got %v", err)
	}
	// Admin status alone does not make the actor a course member.
	err := Authorize(ActionSubmit, Input{Actor: "root", Admin: true})
	if denialReason(t, err) != ReasonNotRelatedToCourse {
		t.Fatalf("expected not related to course for admin, got %v", err)
	}
}

func TestReadStudentWork(t *testing.T) {
	if err := Authorize(ActionReadStudentWork, Input{Actor: "lawrence", Student: true, Target: "lawrence"}); err != nil {
		t.Fatalf("expected student to read own work, got %v", err)
	}
	err := Authorize(ActionReadStudentWork, Input{Actor: "eric", Student: true, Target: "lawrence"})
	if denialReason(t, err) != ReasonNotCourseInstructor {
		t.Fatalf("expected not course instructor for other student, got %v", err)
	}
	if err := Authorize(ActionReadStudentWork, Input{Actor: "kevin", Instructor: true, Target: "lawrence"}); err != nil {
		t.Fatalf("expected instructor to read student work, got %v", err)
	}
}

func TestReadSubmissionsAndFeedback(t *testing.T) {
	err := Authorize(ActionReadSubmissions, Input{Actor: "eric", Student: true})
	if denialReason(t, err) != ReasonNotCourseInstructor {
		t.Fatalf("expected not course instructor, got %v", err)
	}
	err = Authorize(ActionManageFeedback, Input{Actor: "lawrence", Student: true, Target: "lawrence"})
	if denialReason(t, err) != ReasonNotCourseInstructor {
		t.Fatalf("expected feedback upload to stay instructor-only, got %v", err)
	}
}
