package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/remote"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/repo"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/service"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/testutil/testdb"
)

func newTestServer(t *testing.T) (*httptest.Server, *repo.Students, *repo.Period) {
	t.Helper()
	database := testdb.Start(t)
	store := remote.NewMemory()
	logger := zap.NewNop()
	broker := db.NewBroker()
	dispatch := repo.SyncDispatcher()

	students := repo.NewStudents(database, store, logger, broker, dispatch)
	teachers := repo.NewTeachers(database, store, logger, broker, dispatch)
	attendance := repo.NewAttendance(database, store, logger, broker)
	periods := repo.NewPeriod(database, store, logger, broker, dispatch)
	events := repo.NewEvents(database, store, logger, broker, dispatch)

	api := &API{
		Students:   students,
		Teachers:   teachers,
		Records:    attendance,
		Events:     events,
		Periods:    periods,
		Attendance: service.NewAttendance(students, attendance, periods, logger, nil),
		Roster:     service.NewRoster(students, teachers, logger),
		Log:        logger,
		Location:   time.UTC,
	}
	mux := http.NewServeMux()
	api.Routes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, students, periods
}

func TestScanEndpoint(t *testing.T) {
	srv, students, periods := newTestServer(t)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	year := int64(365 * 24 * time.Hour / time.Millisecond)
	if err := periods.Set(ctx, models.SchoolPeriod{
		SchoolYear: "2025-2026",
		Q1Start:    now - year, Q1End: now + year,
		ShsQ1Start: now - year, ShsQ1End: now + year,
	}); err != nil {
		t.Fatal(err)
	}
	if err := students.Insert(ctx, models.Student{ID: "s1", FirstName: "Ana", LastName: "Reyes", Grade: "8", Section: "Rizal"}); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(srv.URL+"/api/scan", "application/json", strings.NewReader(`{"studentId":"s1"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/scan", "application/json", strings.NewReader(`{"studentId":"missing"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown student: status %d", resp.StatusCode)
	}
}

func TestScanEndpointRejectsUnconfiguredCalendar(t *testing.T) {
	srv, students, _ := newTestServer(t)

	if err := students.Insert(context.Background(), models.Student{ID: "s1", FirstName: "Ana", LastName: "Reyes", Grade: "8", Section: "Rizal"}); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+"/api/scan", "application/json", strings.NewReader(`{"studentId":"s1"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d, want 409", resp.StatusCode)
	}
}

func TestStudentsExportEndpoint(t *testing.T) {
	srv, students, _ := newTestServer(t)

	if err := students.Insert(context.Background(), models.Student{ID: "s1", FirstName: "Ana", LastName: "Reyes", Grade: "8", Section: "Rizal"}); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get(srv.URL + "/api/export/students.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
}

// Creating an event without an id must echo the generated id back, so the
// client can address the event for deletion afterwards.
func TestEventCreateAssignsID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/events", "application/json",
		strings.NewReader(`{"title":"Foundation Day","date":1757894400000,"type":"activity"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body struct {
		Event models.SchoolEvent `json:"event"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Event.ID == "" {
		t.Fatal("created event has no id")
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/events/"+body.Event.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	del, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", del.StatusCode)
	}
}
