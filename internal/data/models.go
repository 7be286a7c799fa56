package data

// User is an account. PasswordHash always holds a bcrypt hash.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
}

// Task belongs to exactly one user; UserID is set on insert and never changed.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    string `json:"userId"`
}
