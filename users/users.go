// Package users is the local directory of site accounts, keyed by email.
package users

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound = errors.New("users: not found")
	ErrExists   = errors.New("users: email already registered")
)

type ID int64

type User struct {
	ID         ID
	Email      string
	Login      string
	FirstName  string
	LastName   string
	Nickname   string
	Registered string // as reported by the billing provider
	Role       string

	PasswordHash []byte
}

// CheckPassword reports whether password is u's password.
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

// A Directory stores users. Email is unique among users.
type Directory interface {
	// LookupByEmail returns the user with email, or ErrNotFound.
	LookupByEmail(ctx context.Context, email string) (User, error)

	// Create adds u with the given password, ignoring u.ID and
	// u.PasswordHash, and returns the new user's ID. It returns ErrExists
	// if a user with u.Email exists.
	Create(ctx context.Context, u User, password string) (ID, error)

	// Update sets the email and names of the user with u.ID. It returns
	// ErrNotFound if there is no such user.
	Update(ctx context.Context, u User) error
}

func hashPassword(password string, cost int) ([]byte, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(password), cost)
}

// Memory is a Directory held in memory. The zero value is ready to use.
type Memory struct {
	Cost int // bcrypt cost; zero means bcrypt.DefaultCost

	mu     sync.Mutex
	lastID ID
	byID   map[ID]User
}

func (d *Memory) LookupByEmail(_ context.Context, email string) (User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (d *Memory) Create(_ context.Context, u User, password string) (ID, error) {
	hash, err := hashPassword(password, d.Cost)
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range d.byID {
		if v.Email == u.Email {
			return 0, ErrExists
		}
	}
	if d.byID == nil {
		d.byID = make(map[ID]User)
	}
	d.lastID++
	u.ID = d.lastID
	u.PasswordHash = hash
	d.byID[u.ID] = u
	return u.ID, nil
}

func (d *Memory) Update(_ context.Context, u User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	for id, w := range d.byID {
		if id != u.ID && w.Email == u.Email {
			return ErrExists
		}
	}
	v.Email = u.Email
	v.FirstName = u.FirstName
	v.LastName = u.LastName
	d.byID[u.ID] = v
	return nil
}

// Len returns the number of users in d.
func (d *Memory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byID)
}
