package models

// DefaultPassword is assigned lazily when a student or teacher has not
// changed their credentials yet.
const DefaultPassword = "123456"

type Student struct {
	ID                    string  `json:"id"`
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	Grade                 string  `json:"grade"`
	Section               string  `json:"section"`
	Username              *string `json:"username,omitempty"`
	Password              *string `json:"password,omitempty"`
	HasChangedCredentials bool    `json:"hasChangedCredentials"`
	IsArchived            bool    `json:"isArchived"`
}

// EffectiveUsername returns the stored username, or the student ID when the
// credentials were never changed.
func (s Student) EffectiveUsername() string {
	if s.Username != nil && *s.Username != "" {
		return *s.Username
	}
	return s.ID
}

// EffectivePassword returns the stored password, or the default one.
func (s Student) EffectivePassword() string {
	if s.Password != nil && *s.Password != "" {
		return *s.Password
	}
	return DefaultPassword
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
