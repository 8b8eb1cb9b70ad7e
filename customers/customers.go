// Package customers keeps local user accounts in step with billing
// customers.
package customers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"

	"github.com/pkevan/wp-chargify/chargify"
	"github.com/pkevan/wp-chargify/form"
	"github.com/pkevan/wp-chargify/users"
)

// Role is the role given to accounts created for billing customers.
const Role = "chargify_user"

var ErrNoEmail = errors.New("customers: customer has no valid email address")

// A Record is a billing customer as reported by Chargify.
type Record struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
	Reference string `json:"reference,omitempty"`
}

// FromChargify returns the Record for c.
func FromChargify(c chargify.Customer) Record {
	return Record{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CreatedAt: c.CreatedAt,
		Reference: c.Reference,
	}
}

type Reconciler struct {
	Directory users.Directory

	// GeneratePassword, if set, is given the random password generated
	// for a new account and returns the password to use instead.
	GeneratePassword func(generated string) string

	Logf func(format string, args ...any)

	rand io.Reader // for tests; nil means crypto/rand
}

func (r *Reconciler) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// Reconcile creates an account for rec if there is none with its email, or
// else updates the email and names of the existing account. It returns the
// account's ID.
//
// Errors from the directory are returned unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, rec Record) (users.ID, error) {
	return r.reconcile(ctx, rec, "", "")
}

// ReconcileWithCredentials is like Reconcile, but a new account gets the
// given password, if not empty, and username as its nickname.
func (r *Reconciler) ReconcileWithCredentials(ctx context.Context, rec Record, username, password string) (users.ID, error) {
	return r.reconcile(ctx, rec, form.SanitizeText(username), password)
}

func (r *Reconciler) reconcile(ctx context.Context, rec Record, nickname, password string) (users.ID, error) {
	u := users.User{
		Email:     form.SanitizeEmail(rec.Email),
		FirstName: form.SanitizeText(rec.FirstName),
		LastName:  form.SanitizeText(rec.LastName),
	}
	if u.Email == "" {
		return 0, ErrNoEmail
	}

	existing, err := r.Directory.LookupByEmail(ctx, u.Email)
	if err == nil {
		return r.update(ctx, existing.ID, u)
	}
	if !errors.Is(err, users.ErrNotFound) {
		return 0, err
	}

	if password == "" {
		password, err = r.generatePassword()
		if err != nil {
			return 0, err
		}
	}
	u.Login = u.Email
	u.Nickname = nickname
	u.Registered = rec.CreatedAt
	u.Role = Role
	id, err := r.Directory.Create(ctx, u, password)
	if errors.Is(err, users.ErrExists) {
		// created by a concurrent request since the lookup
		existing, err := r.Directory.LookupByEmail(ctx, u.Email)
		if err != nil {
			return 0, err
		}
		return r.update(ctx, existing.ID, u)
	}
	if err != nil {
		return 0, err
	}
	r.logf("customers: created user %d for %s", id, u.Email)
	return id, nil
}

func (r *Reconciler) update(ctx context.Context, id users.ID, u users.User) (users.ID, error) {
	u.ID = id
	if err := r.Directory.Update(ctx, u); err != nil {
		return 0, err
	}
	r.logf("customers: updated user %d for %s", id, u.Email)
	return id, nil
}

func (r *Reconciler) generatePassword() (string, error) {
	src := r.rand
	if src == nil {
		src = rand.Reader
	}
	b := make([]byte, 18)
	if _, err := io.ReadFull(src, b); err != nil {
		return "", err
	}
	pw := base64.RawURLEncoding.EncodeToString(b)
	if r.GeneratePassword != nil {
		pw = r.GeneratePassword(pw)
	}
	return pw, nil
}
