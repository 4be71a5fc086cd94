package export

import (
	"strings"
	"testing"
	"time"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

func TestWriteStudentsCSVOrder(t *testing.T) {
	username := "bencruz"
	students := []models.Student{
		{ID: "s3", FirstName: "Eva", LastName: "Diaz", Grade: "10", Section: "A"},
		{ID: "s1", FirstName: "Ben", LastName: "Cruz", Grade: "8", Section: "B", Username: &username},
		{ID: "s2", FirstName: "Ana", LastName: "Reyes", Grade: "8", Section: "A"},
	}

	var sb strings.Builder
	if err := WriteStudentsCSV(&sb, students); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "Student ID,First Name,Last Name,Grade,Section,Username" {
		t.Fatalf("header: %q", lines[0])
	}
	// Sorted by grade, then section, then last name. Grade 8 before 10.
	wantOrder := []string{"s2", "s1", "s3"}
	for i, id := range wantOrder {
		if !strings.HasPrefix(lines[i+1], id+",") {
			t.Fatalf("row %d = %q, want id %s", i+1, lines[i+1], id)
		}
	}
	if !strings.HasSuffix(lines[2], ",bencruz") {
		t.Fatalf("username column: %q", lines[2])
	}
	// s2 falls back to the id as login.
	if !strings.HasSuffix(lines[1], ",s2") {
		t.Fatalf("default username column: %q", lines[1])
	}
}

func TestAttendanceSheet(t *testing.T) {
	math := "Math"
	students := []models.Student{
		{ID: "s1", FirstName: "Ana", LastName: "Reyes", Grade: "8", Section: "Rizal"},
		{ID: "s2", FirstName: "Ben", LastName: "Cruz", Grade: "8", Section: "Rizal", IsArchived: true},
	}
	records := []models.AttendanceRecord{
		{ID: "b", StudentID: "s2", Timestamp: 2000, Status: models.StatusLate, Type: models.TypeSubject, Subject: &math, AcademicPeriod: "Q1"},
		{ID: "a", StudentID: "s1", Timestamp: 1000, Status: models.StatusPresent, Type: models.TypeHomeroom, AcademicPeriod: "Q1"},
		{ID: "c", StudentID: "ghost", Timestamp: 3000, Status: models.StatusPresent, Type: models.TypeHomeroom, AcademicPeriod: "Q1"},
	}

	sheet := AttendanceSheet("Q1", records, students, time.UTC)
	if sheet.Title != "Q1" {
		t.Fatalf("title %q", sheet.Title)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 (unknown student dropped)", len(sheet.Rows))
	}
	// Chronological order.
	if sheet.Rows[0][0] != "s1" || sheet.Rows[1][0] != "s2" {
		t.Fatalf("row order: %v / %v", sheet.Rows[0], sheet.Rows[1])
	}
	if !strings.Contains(sheet.Rows[1][1], "(archived)") {
		t.Fatalf("archived flag missing: %v", sheet.Rows[1])
	}
	if sheet.Rows[1][8] != "Math" {
		t.Fatalf("subject column: %v", sheet.Rows[1])
	}
}

func TestNewWorkbookBuildsSheets(t *testing.T) {
	wb, err := NewWorkbook([]SheetSpec{
		{Title: "Roster", Header: []string{"ID", "Name"}, Rows: [][]string{{"s1", "Ana Reyes"}}},
		{Title: "Q1", Header: []string{"ID"}, Rows: nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	names := wb.File.GetSheetList()
	if len(names) != 2 || names[0] != "Roster" || names[1] != "Q1" {
		t.Fatalf("sheets: %v", names)
	}
	got, err := wb.File.GetCellValue("Roster", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Ana Reyes" {
		t.Fatalf("cell B2 = %q", got)
	}
}
