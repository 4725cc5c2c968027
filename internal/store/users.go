// Package store provides the in-memory user registry. The registry is
// process-lifetime state: records are created on registration and lost on
// restart; there is no persistence layer behind it.
package store

import (
	"strconv"
	"sync"
)

// User is a stored user record. Password holds whatever form the configured
// password mode produced (plaintext or a bcrypt hash).
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	CreatedAt string
}

// Users is a concurrency-safe user registry keyed by email. Email comparison
// is exact and case-sensitive.
type Users struct {
	mu      sync.RWMutex
	byEmail map[string]*User
	nextID  int
}

// NewUsers creates an empty registry.
func NewUsers() *Users {
	return &Users{
		byEmail: make(map[string]*User),
		nextID:  1,
	}
}

// Create inserts a new user if the email is not already registered.
// The existence check and insert happen under one lock so concurrent
// registrations of the same email cannot both succeed. Returns the stored
// record and true on success, or nil and false when the email is taken.
func (u *Users) Create(name, email, password, createdAt string) (*User, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, exists := u.byEmail[email]; exists {
		return nil, false
	}

	user := &User{
		ID:        strconv.Itoa(u.nextID),
		Name:      name,
		Email:     email,
		Password:  password,
		CreatedAt: createdAt,
	}
	u.byEmail[email] = user
	u.nextID++

	copied := *user
	return &copied, true
}

// GetByEmail returns a copy of the record for the given email.
func (u *Users) GetByEmail(email string) (*User, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	user, exists := u.byEmail[email]
	if !exists {
		return nil, false
	}

	copied := *user
	return &copied, true
}

// Count returns the number of stored records.
func (u *Users) Count() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.byEmail)
}
