package domain

// Account is a registered user in the account directory. Email is the unique
// key. Password holds either the plaintext written by older clients or a
// bcrypt hash.
type Account struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session returns the identity an account logs in as.
func (a Account) Session() Session {
	return Session{Name: a.Name, Email: a.Email}
}
