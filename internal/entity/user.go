package entity

// User owns locations and items. Relations are nil unless populated.
type User struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password,omitempty"`
	Language  string `json:"language"`

	Locations []*Location `json:"locations,omitempty"`
	Items     []*Item     `json:"items,omitempty"`
}

// ApplyTo copies the scalar fields of u onto stored.
func (u *User) ApplyTo(stored *User) {
	stored.Firstname = u.Firstname
	stored.Lastname = u.Lastname
	stored.Email = u.Email
	stored.Username = u.Username
	stored.Password = u.Password
	stored.Language = u.Language
}

// Public returns a shallow copy without the password, for rendering.
func (u *User) Public() *User {
	c := *u
	c.Password = ""
	return &c
}
