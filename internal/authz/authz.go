// Package authz is the access control engine. Every operation's permission
// rule lives behind the single Authorize entry point so that the full matrix
// is testable in one place. Existence checks (course, assignment, target
// person) are the caller's responsibility and happen before Authorize; the
// engine only decides role questions.
package authz

const (
	ReasonNotAdmin              = "not admin"
	ReasonNotCourseInstructor   = "not course instructor"
	ReasonNotRelatedToCourse    = "not related to course"
	ReasonModifyOtherInstructor = "cannot modify other instructors"
	ReasonModifyInstructors     = "cannot modify instructors"
)

// Denial is a denied authorization decision. Its message is the exact
// user-facing permission error.
type Denial struct {
	Reason string
}

func (d *Denial) Error() string {
	return "Permission denied (" + d.Reason + ")"
}

type Action int

const (
	// ActionManageCourse covers course create and delete.
	ActionManageCourse Action = iota
	// ActionModifyInstructor covers instructor add and rename.
	ActionModifyInstructor
	// ActionRemoveInstructor is admin-only.
	ActionRemoveInstructor
	// ActionReadRoster covers instructor get and list.
	ActionReadRoster
	// ActionManageStudents covers student add, remove, rename, get and list.
	ActionManageStudents
	// ActionReadAssignments covers assignment list and download.
	ActionReadAssignments
	// ActionManageAssignments covers assignment release and delete.
	ActionManageAssignments
	// ActionSubmit covers creating a submission.
	ActionSubmit
	// ActionReadSubmissions covers listing every student's submissions.
	ActionReadSubmissions
	// ActionReadStudentWork covers listing and downloading one student's
	// submissions and their feedback.
	ActionReadStudentWork
	// ActionManageFeedback covers feedback upload.
	ActionManageFeedback
)

// Input carries the facts the engine decides on. Instructor and Student
// describe the actor's relation to the course at hand; Target and
// TargetInstructor describe the person record being touched, when any.
type Input struct {
	Actor            string
	Admin            bool
	Instructor       bool
	Student          bool
	Target           string
	TargetInstructor bool
}

// Authorize returns nil when the actor may perform the action, or a *Denial
// carrying the specific reason. Admins pass every check except ActionSubmit,
// which requires actual course membership (the submission would be recorded
// under the actor's name).
func Authorize(action Action, in Input) error {
	switch action {
	case ActionManageCourse, ActionRemoveInstructor:
		if !in.Admin {
			return &Denial{Reason: ReasonNotAdmin}
		}
	case ActionModifyInstructor:
		if in.Admin {
			return nil
		}
		if !in.Instructor {
			return &Denial{Reason: ReasonNotCourseInstructor}
		}
		if in.Target == in.Actor {
			return nil
		}
		if in.TargetInstructor {
			return &Denial{Reason: ReasonModifyOtherInstructor}
		}
		return &Denial{Reason: ReasonModifyInstructors}
	case ActionReadRoster, ActionReadAssignments:
		if !in.Admin && !in.Instructor && !in.Student {
			return &Denial{Reason: ReasonNotRelatedToCourse}
		}
	case ActionManageStudents, ActionManageAssignments, ActionReadSubmissions, ActionManageFeedback:
		if !in.Admin && !in.Instructor {
			return &Denial{Reason: ReasonNotCourseInstructor}
		}
	case ActionSubmit:
		if !in.Instructor && !in.Student {
			return &Denial{Reason: ReasonNotRelatedToCourse}
		}
	case ActionReadStudentWork:
		if !in.Admin && !in.Instructor && in.Actor != in.Target {
			return &Denial{Reason: ReasonNotCourseInstructor}
		}
	}
	return nil
}
