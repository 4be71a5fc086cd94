package models

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAdviser Role = "adviser"
	RoleSubject Role = "subject"
)

const (
	DepartmentJHS = "JHS"
	DepartmentSHS = "SHS"
)

type Teacher struct {
	ID                    string  `json:"id"`
	Username              string  `json:"username"`
	Password              string  `json:"password"`
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	Email                 *string `json:"email,omitempty"`
	Role                  Role    `json:"role"`
	Department            *string `json:"department,omitempty"`
	AdvisoryGrade         *string `json:"advisoryGrade,omitempty"`
	AdvisorySection       *string `json:"advisorySection,omitempty"`
	AdvisoryTrack         *string `json:"advisoryTrack,omitempty"`
	AdvisoryStartTime     *string `json:"advisoryStartTime,omitempty"`
	HasChangedCredentials bool    `json:"hasChangedCredentials"`
}

// Advises reports whether the teacher currently holds the given advisory
// class.
func (t Teacher) Advises(grade, section string) bool {
	return t.AdvisoryGrade != nil && *t.AdvisoryGrade == grade &&
		t.AdvisorySection != nil && *t.AdvisorySection == section
}
