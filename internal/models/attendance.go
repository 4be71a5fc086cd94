package models

const (
	StatusPresent       = "present"
	StatusLate          = "late"
	StatusAbsent        = "absent"
	StatusNotApplicable = "not-applicable"
)

const (
	TypeHomeroom = "homeroom"
	TypeSubject  = "subject"
)

// AttendanceRecord is immutable after creation; corrections are new records.
// (StudentID, Timestamp) is the identity used for duplicate detection during
// sync, Timestamp being the creation time in epoch millis.
type AttendanceRecord struct {
	ID             string  `json:"id"`
	StudentID      string  `json:"studentId"`
	Timestamp      int64   `json:"timestamp"`
	Status         string  `json:"status"`
	Type           string  `json:"type"`
	Subject        *string `json:"subject,omitempty"`
	AcademicPeriod string  `json:"academicPeriod"`
	Synced         bool    `json:"synced"`
}
