// Package http is the transport surface: routing, bearer-credential
// resolution and JSON encoding. All decisions live in the service layer; the
// handlers only translate between the wire and the operations.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ykazakov/courseshare/internal/auth"
	"github.com/ykazakov/courseshare/internal/config"
	"github.com/ykazakov/courseshare/internal/model"
	"github.com/ykazakov/courseshare/internal/service"
)

type Server struct {
	cfg      config.Config
	svc      *service.Service
	resolver auth.Resolver
}

func NewServer(cfg config.Config, svc *service.Service, resolver auth.Resolver) *Server {
	return &Server{cfg: cfg, svc: svc, resolver: resolver}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/courses", s.handleListCourses)
		r.Post("/course/{courseID}", s.handleCreateCourse)
		r.Delete("/course/{courseID}", s.handleDeleteCourse)

		r.Get("/instructor/{courseID}/{instructorID}", s.handleGetInstructor)
		r.Post("/instructor/{courseID}/{instructorID}", s.handleAddInstructor)
		r.Delete("/instructor/{courseID}/{instructorID}", s.handleDeleteInstructor)
		r.Get("/instructors/{courseID}", s.handleListInstructors)

		r.Get("/student/{courseID}/{studentID}", s.handleGetStudent)
		r.Post("/student/{courseID}/{studentID}", s.handleAddStudent)
		r.Delete("/student/{courseID}/{studentID}", s.handleDeleteStudent)
		r.Get("/students/{courseID}", s.handleListStudents)
		r.Post("/students/{courseID}", s.handleAddStudents)

		r.Get("/assignments/{courseID}", s.handleListAssignments)
		r.Get("/assignment/{courseID}/{assignmentID}", s.handleDownloadAssignment)
		r.Post("/assignment/{courseID}/{assignmentID}", s.handleReleaseAssignment)
		r.Delete("/assignment/{courseID}/{assignmentID}", s.handleDeleteAssignment)

		r.Get("/submissions/{courseID}/{assignmentID}", s.handleListSubmissions)
		r.Get("/submissions/{courseID}/{assignmentID}/{studentID}", s.handleListStudentSubmissions)
		r.Post("/submission/{courseID}/{assignmentID}", s.handleSubmit)
		r.Get("/submission/{courseID}/{assignmentID}/{studentID}", s.handleDownloadSubmission)

		r.Post("/feedback/{courseID}/{assignmentID}/{studentID}", s.handleUploadFeedback)
		r.Get("/feedback/{courseID}/{assignmentID}/{studentID}", s.handleDownloadFeedback)
	})

	return r
}

// Auth

type actorKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := bearerToken(r.Header.Get("Authorization"))
		if credential == "" {
			writeError(w, http.StatusUnauthorized, "Please supply token")
			return
		}
		actor, err := s.resolver.Resolve(r.Context(), credential)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// Courses

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.svc.ListCourses(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "courses": courses})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Instructors json.RawMessage `json:"instructors"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Instructors cannot be JSON decoded")
		return
	}
	err := s.svc.CreateCourse(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "courseID"), body.Instructors)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteCourse(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "courseID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

// Roster

type memberBody struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

func (b memberBody) form() service.MemberForm {
	return service.MemberForm{FirstName: b.FirstName, LastName: b.LastName, Email: b.Email}
}

func (s *Server) handleGetInstructor(w http.ResponseWriter, r *http.Request) {
	member, err := s.svc.GetInstructor(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "instructorID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeMember(w, member)
}

func (s *Server) handleAddInstructor(w http.ResponseWriter, r *http.Request) {
	var body memberBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Incorrect request format")
		return
	}
	err := s.svc.AddInstructor(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "instructorID"), body.form())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleDeleteInstructor(w http.ResponseWriter, r *http.Request) {
	err := s.svc.RemoveInstructor(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "instructorID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleListInstructors(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.ListInstructors(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "courseID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "instructors": membersJSON(members)})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	member, err := s.svc.GetStudent(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "studentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeMember(w, member)
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var body memberBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Incorrect request format")
		return
	}
	err := s.svc.AddStudent(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "studentID"), body.form())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	err := s.svc.RemoveStudent(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "studentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.ListStudents(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "courseID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "students": membersJSON(members)})
}

func (s *Server) handleAddStudents(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Students json.RawMessage `json:"students"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Students cannot be JSON decoded")
		return
	}
	status, err := s.svc.AddStudents(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "courseID"), body.Students)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": statusJSON(status)})
}

// Assignments

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := s.svc.ListAssignments(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "courseID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "assignments": assignments})
}

func (s *Server) handleDownloadAssignment(w http.ResponseWriter, r *http.Request) {
	listOnly := boolParam(r, "list_only")
	files, err := s.svc.DownloadAssignment(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"), listOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "files": filesJSON(files, listOnly)})
}

func (s *Server) handleReleaseAssignment(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeFilesBody(w, r)
	if !ok {
		return
	}
	err := s.svc.ReleaseAssignment(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"), body.Files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteAssignment(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

// Submissions

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	refs, err := s.svc.ListSubmissions(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "submissions": refsJSON(refs)})
}

func (s *Server) handleListStudentSubmissions(w http.ResponseWriter, r *http.Request) {
	refs, err := s.svc.ListStudentSubmissions(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"), chi.URLParam(r, "studentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "submissions": refsJSON(refs)})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeFilesBody(w, r)
	if !ok {
		return
	}
	timestamp, err := s.svc.Submit(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"), body.Files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": service.FormatTimestamp(timestamp),
	})
}

func (s *Server) handleDownloadSubmission(w http.ResponseWriter, r *http.Request) {
	listOnly := boolParam(r, "list_only")
	timestamp, files, err := s.svc.DownloadSubmission(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"), chi.URLParam(r, "studentID"),
		r.URL.Query().Get("timestamp"), listOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"timestamp": service.FormatTimestamp(timestamp),
		"files":     filesJSON(files, listOnly),
	})
}

// Feedback

func (s *Server) handleUploadFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Timestamp string          `json:"timestamp"`
		Files     json.RawMessage `json:"files"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Files cannot be JSON decoded")
		return
	}
	err := s.svc.UploadFeedback(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"), chi.URLParam(r, "studentID"),
		body.Timestamp, body.Files)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleDownloadFeedback(w http.ResponseWriter, r *http.Request) {
	listOnly := boolParam(r, "list_only")
	files, err := s.svc.DownloadFeedback(r.Context(), actorFromContext(r.Context()),
		chi.URLParam(r, "courseID"), chi.URLParam(r, "assignmentID"), chi.URLParam(r, "studentID"),
		r.URL.Query().Get("timestamp"), listOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "files": filesJSON(files, listOnly)})
}

// Encoding helpers

type memberJSON struct {
	Username  string  `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

type fileJSON struct {
	Path     string  `json:"path"`
	Content  *string `json:"content,omitempty"`
	Checksum string  `json:"checksum"`
}

type refJSON struct {
	StudentID string `json:"student_id"`
	Timestamp string `json:"timestamp"`
}

type statusEntryJSON struct {
	Username string `json:"username"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
}

func writeMember(w http.ResponseWriter, member model.Member) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"username":   member.Username,
		"first_name": member.FirstName,
		"last_name":  member.LastName,
		"email":      member.Email,
	})
}

func membersJSON(members []model.Member) []memberJSON {
	out := make([]memberJSON, 0, len(members))
	for _, member := range members {
		out = append(out, memberJSON{
			Username:  member.Username,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			Email:     member.Email,
		})
	}
	return out
}

func filesJSON(files []model.FileContent, listOnly bool) []fileJSON {
	out := make([]fileJSON, 0, len(files))
	for _, file := range files {
		entry := fileJSON{Path: file.Path, Checksum: file.Checksum}
		if !listOnly {
			content := base64.StdEncoding.EncodeToString(file.Content)
			entry.Content = &content
		}
		out = append(out, entry)
	}
	return out
}

func refsJSON(refs []model.SubmissionRef) []refJSON {
	out := make([]refJSON, 0, len(refs))
	for _, ref := range refs {
		out = append(out, refJSON{StudentID: ref.StudentID, Timestamp: service.FormatTimestamp(ref.CreatedAt)})
	}
	return out
}

func statusJSON(status []service.StudentStatus) []statusEntryJSON {
	out := make([]statusEntryJSON, 0, len(status))
	for _, entry := range status {
		out = append(out, statusEntryJSON{Username: entry.Username, Success: entry.Success, Message: entry.Message})
	}
	return out
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// decodeJSON tolerates an empty body, which reads as every field missing.
func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(out)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type filesBody struct {
	Files json.RawMessage `json:"files"`
}

func decodeFilesBody(w http.ResponseWriter, r *http.Request) (filesBody, bool) {
	var body filesBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Files cannot be JSON decoded")
		return filesBody{}, false
	}
	return body, true
}

func boolParam(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && value
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *service.Error
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
