package domain

// Session is the currently authenticated identity of the origin.
type Session struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Valid reports whether both identifying fields are present.
func (s Session) Valid() bool {
	return s.Name != "" && s.Email != ""
}
