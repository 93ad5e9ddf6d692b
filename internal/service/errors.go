package service

import (
	"log"
	"net/http"
)

// Error is an operation failure carrying the HTTP status class and the exact
// user-facing message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	errCourseNotFound     = &Error{http.StatusNotFound, "Course not found"}
	errAssignmentNotFound = &Error{http.StatusNotFound, "Assignment not found"}
	errInstructorNotFound = &Error{http.StatusNotFound, "Instructor not found"}
	errStudentNotFound    = &Error{http.StatusNotFound, "Student not found"}
	errSubmissionNotFound = &Error{http.StatusNotFound, "Submission not found"}

	errCourseExists        = &Error{http.StatusConflict, "Course already exists"}
	errAssignmentExists    = &Error{http.StatusConflict, "Assignment already exists"}
	errInstructorAsStudent = &Error{http.StatusConflict, "Cannot add instructor as student"}

	errSupplyFiles     = &Error{http.StatusBadRequest, "Please supply files"}
	errSupplyTimestamp = &Error{http.StatusBadRequest, "Please supply timestamp"}
	errSupplyFirstName = &Error{http.StatusBadRequest, "Please supply first name"}
	errSupplyLastName  = &Error{http.StatusBadRequest, "Please supply last name"}
	errSupplyEmail     = &Error{http.StatusBadRequest, "Please supply email"}
	errSupplyStudents  = &Error{http.StatusBadRequest, "Please supply students"}

	errFilesDecode       = &Error{http.StatusBadRequest, "Files cannot be JSON decoded"}
	errStudentsDecode    = &Error{http.StatusBadRequest, "Students cannot be JSON decoded"}
	errInstructorsDecode = &Error{http.StatusBadRequest, "Instructors cannot be JSON decoded"}
	errContentEncoding   = &Error{http.StatusBadRequest, "Content cannot be base64 decoded"}
	errBadFormat         = &Error{http.StatusBadRequest, "Incorrect request format"}
	errIllegalPath       = &Error{http.StatusBadRequest, "Illegal path"}
	errTimeFormat        = &Error{http.StatusBadRequest, "Time format incorrect"}

	errFilenameConflict = &Error{http.StatusInternalServerError, "Internal server error (filename conflict)"}
)

// errInternal wraps unexpected storage or database faults. The cause is
// logged server-side and never leaks to the client.
func errInternal(err error) *Error {
	log.Printf("internal error: %v", err)
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error"}
}
