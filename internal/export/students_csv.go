package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
)

// WriteStudentsCSV writes the roster in the import-compatible layout,
// sorted by grade, section, last name.
func WriteStudentsCSV(w io.Writer, students []models.Student) error {
	sorted := make([]models.Student, len(students))
	copy(sorted, students)
	sort.Slice(sorted, func(i, j int) bool {
		gi, gj := gradeOrder(sorted[i].Grade), gradeOrder(sorted[j].Grade)
		if gi != gj {
			return gi < gj
		}
		if sorted[i].Section != sorted[j].Section {
			return sorted[i].Section < sorted[j].Section
		}
		return sorted[i].LastName < sorted[j].LastName
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Student ID", "First Name", "Last Name", "Grade", "Section", "Username"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range sorted {
		row := []string{s.ID, s.FirstName, s.LastName, s.Grade, s.Section, s.EffectiveUsername()}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func gradeOrder(grade string) int {
	n, err := strconv.Atoi(grade)
	if err != nil {
		return 99
	}
	return n
}
