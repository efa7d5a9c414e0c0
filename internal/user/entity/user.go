package entity

// User is one record of the registry document. JSON keys follow the public
// wire format, which is also the on-disk format of the document.
type User struct {
	ID       int64   `json:"id"`
	Name     string  `json:"nombre"`
	Email    string  `json:"correo"`
	Password string  `json:"contraseña"`
	Age      *int    `json:"edad,omitempty"`
	Country  string  `json:"pais"`
	Phone    *string `json:"telefono,omitempty"`
}

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	if u.Age != nil {
		a := *u.Age
		u.Age = &a
	}
	if u.Phone != nil {
		p := *u.Phone
		u.Phone = &p
	}
	return u
}

// Payload is the request body for create and update. Absent keys decode to
// zero values; update treats zero values as "leave unchanged".
type Payload struct {
	Name     string `json:"nombre"`
	Email    string `json:"correo"`
	Password string `json:"contraseña"`
	Age      *int   `json:"edad"`
	Country  string `json:"pais"`
	Phone    string `json:"telefono"`
}
