package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/export"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/repo"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/service"
)

// API is the device-local REST surface used by the kiosk frontend.
type API struct {
	Students   *repo.Students
	Teachers   *repo.Teachers
	Records    *repo.Attendance
	Events     *repo.Events
	Periods    *repo.Period
	Attendance *service.Attendance
	Roster     *service.Roster
	Log        *zap.Logger
	Location   *time.Location
}

func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scan", a.handleScan)
	mux.HandleFunc("POST /api/attendance", a.handleManual)
	mux.HandleFunc("GET /api/attendance", a.handleListAttendance)
	mux.HandleFunc("POST /api/sweeps/absentees", a.handleAbsentees)

	mux.HandleFunc("GET /api/students", a.handleListStudents)
	mux.HandleFunc("POST /api/students", a.handleAddStudent)
	mux.HandleFunc("POST /api/students/import", a.handleImportStudents)
	mux.HandleFunc("POST /api/students/{id}/archive", a.handleArchive(true))
	mux.HandleFunc("POST /api/students/{id}/restore", a.handleArchive(false))

	mux.HandleFunc("GET /api/teachers", a.handleListTeachers)
	mux.HandleFunc("PUT /api/roster/adviser", a.handleAssignAdviser)
	mux.HandleFunc("DELETE /api/roster/adviser/{id}", a.handleRemoveAdviser)

	mux.HandleFunc("GET /api/events", a.handleListEvents)
	mux.HandleFunc("POST /api/events", a.handleUpsertEvent)
	mux.HandleFunc("DELETE /api/events/{id}", a.handleDeleteEvent)

	mux.HandleFunc("GET /api/config/period", a.handleGetPeriod)
	mux.HandleFunc("PUT /api/config/period", a.handleSetPeriod)

	mux.HandleFunc("GET /api/export/students.csv", a.handleExportStudents)
	mux.HandleFunc("GET /api/export/attendance.xlsx", a.handleExportAttendance)
}

func (a *API) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string  `json:"studentId"`
		Type      string  `json:"type"`
		Subject   *string `json:"subject"`
	}
	if !a.readJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = models.TypeHomeroom
	}
	rec, err := a.Attendance.RecordScan(r.Context(), req.StudentID, req.Type, req.Subject)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, rec)
}

func (a *API) handleManual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string  `json:"identifier"`
		Status     string  `json:"status"`
		Type       string  `json:"type"`
		Subject    *string `json:"subject"`
		Timestamp  int64   `json:"timestamp"`
	}
	if !a.readJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = models.TypeHomeroom
	}
	rec, err := a.Attendance.RecordManual(r.Context(), req.Identifier, req.Status, req.Type, req.Subject, req.Timestamp)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, rec)
}

func (a *API) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("studentId"); id != "" {
		recs, err := a.Records.ByStudent(r.Context(), id)
		if err != nil {
			a.fail(w, err)
			return
		}
		a.writeJSON(w, http.StatusOK, recs)
		return
	}
	from, to := a.rangeParams(r)
	recs, err := a.Records.InRange(r.Context(), from, to)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, recs)
}

func (a *API) handleAbsentees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Grade   string  `json:"grade"`
		Section string  `json:"section"`
		Type    string  `json:"type"`
		Subject *string `json:"subject"`
	}
	if !a.readJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = models.TypeHomeroom
	}
	marked, err := a.Attendance.MarkAbsentees(r.Context(), req.Grade, req.Section, req.Type, req.Subject)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]int{"marked": marked})
}

func (a *API) handleListStudents(w http.ResponseWriter, r *http.Request) {
	var (
		students []models.Student
		err      error
	)
	switch r.URL.Query().Get("scope") {
	case "all":
		students, err = a.Students.All(r.Context())
	case "archived":
		students, err = a.Students.Archived(r.Context())
	default:
		students, err = a.Students.Active(r.Context())
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, students)
}

func (a *API) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Grade     string `json:"grade"`
		Section   string `json:"section"`
	}
	if !a.readJSON(w, r, &req) {
		return
	}
	s, err := a.Roster.AddStudent(r.Context(), req.ID, req.FirstName, req.LastName, req.Grade, req.Section)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, s)
}

func (a *API) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	n, err := a.Roster.ImportStudentsCSV(r.Context(), r.Body)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (a *API) handleArchive(archive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var err error
		if archive {
			err = a.Students.Archive(r.Context(), id)
		} else {
			err = a.Students.Restore(r.Context(), id)
		}
		if err != nil {
			a.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := a.Teachers.All(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, teachers)
}

func (a *API) handleAssignAdviser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeacherID string  `json:"teacherId"`
		Grade     string  `json:"grade"`
		Section   string  `json:"section"`
		Track     *string `json:"track"`
		StartTime *string `json:"startTime"`
	}
	if !a.readJSON(w, r, &req) {
		return
	}
	if err := a.Roster.AssignAdviser(r.Context(), req.TeacherID, req.Grade, req.Section, req.Track, req.StartTime); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRemoveAdviser(w http.ResponseWriter, r *http.Request) {
	if err := a.Roster.RemoveAdviser(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := a.Events.All(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, events)
}

// handleUpsertEvent stores the event and, for no-class events, immediately
// marks the day for every active student without a record on it.
func (a *API) handleUpsertEvent(w http.ResponseWriter, r *http.Request) {
	var event models.SchoolEvent
	if !a.readJSON(w, r, &event) {
		return
	}
	stored, err := a.Events.Upsert(r.Context(), event)
	if err != nil {
		a.fail(w, err)
		return
	}
	event = stored
	marked := 0
	if event.IsNoClass {
		var err error
		marked, err = a.Attendance.MarkNoClassDay(r.Context(), event)
		if err != nil {
			a.fail(w, err)
			return
		}
	}
	a.writeJSON(w, http.StatusCreated, map[string]any{"event": event, "marked": marked})
}

func (a *API) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := a.Events.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := a.Periods.Get(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	if p == nil {
		http.Error(w, "not configured", http.StatusNotFound)
		return
	}
	a.writeJSON(w, http.StatusOK, p)
}

func (a *API) handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	var p models.SchoolPeriod
	if !a.readJSON(w, r, &p) {
		return
	}
	if err := a.Periods.Set(r.Context(), p); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleExportStudents(w http.ResponseWriter, r *http.Request) {
	students, err := a.Students.Active(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="students.csv"`)
	if err := export.WriteStudentsCSV(w, students); err != nil {
		a.Log.Warn("students export failed", zap.Error(err))
	}
}

func (a *API) handleExportAttendance(w http.ResponseWriter, r *http.Request) {
	from, to := a.rangeParams(r)
	records, err := a.Records.InRange(r.Context(), from, to)
	if err != nil {
		a.fail(w, err)
		return
	}
	students, err := a.Students.All(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	sheet := export.AttendanceSheet("Attendance", records, students, a.Location)
	wb, err := export.NewWorkbook([]export.SheetSpec{sheet})
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.xlsx"`)
	if err := wb.File.Write(w); err != nil {
		a.Log.Warn("attendance export failed", zap.Error(err))
	}
}

func (a *API) rangeParams(r *http.Request) (int64, int64) {
	from, _ := strconv.ParseInt(r.URL.Query().Get("from"), 10, 64)
	to, err := strconv.ParseInt(r.URL.Query().Get("to"), 10, 64)
	if err != nil || to == 0 {
		to = time.Now().UnixMilli()
	}
	return from, to
}

func (a *API) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.Log.Warn("response encode failed", zap.Error(err))
	}
}

func (a *API) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound), errors.Is(err, service.ErrTeacherNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrCalendarNotConfigured):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		a.Log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
