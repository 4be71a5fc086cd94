package export

import (
	"sort"
	"time"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

var attendanceHeader = []string{
	"Student ID", "Last Name", "First Name", "Grade", "Section",
	"Date", "Time", "Status", "Subject", "Academic Period",
}

// AttendanceSheet renders attendance records against the roster. Records
// whose student is unknown locally are skipped; archived students are kept
// (history outlives the roster) and flagged in the name.
func AttendanceSheet(title string, records []models.AttendanceRecord, students []models.Student, loc *time.Location) SheetSpec {
	byID := make(map[string]models.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	sorted := make([]models.AttendanceRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	rows := make([][]string, 0, len(sorted))
	for _, rec := range sorted {
		student, ok := byID[rec.StudentID]
		if !ok {
			continue
		}
		lastName := student.LastName
		if student.IsArchived {
			lastName += " (archived)"
		}
		t := time.UnixMilli(rec.Timestamp).In(loc)
		subject := ""
		if rec.Subject != nil {
			subject = *rec.Subject
		}
		rows = append(rows, []string{
			student.ID, lastName, student.FirstName, student.Grade, student.Section,
			t.Format("2006-01-02"), t.Format("15:04:05"),
			rec.Status, subject, rec.AcademicPeriod,
		})
	}
	return SheetSpec{Title: title, Header: attendanceHeader, Rows: rows}
}
