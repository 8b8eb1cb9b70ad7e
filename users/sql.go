package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var schemas = map[string]string{
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			login TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			nickname TEXT NOT NULL DEFAULT '',
			registered TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			password_hash BLOB NOT NULL
		)`,
	DriverPostgres: `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			login TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			nickname TEXT NOT NULL DEFAULT '',
			registered TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			password_hash BYTEA NOT NULL
		)`,
}

// SQL is a Directory in a SQLite or PostgreSQL database.
type SQL struct {
	Cost int // bcrypt cost; zero means bcrypt.DefaultCost

	db *sql.DB
}

// Open opens the database at dsn with driver, one of DriverSQLite or
// DriverPostgres, and creates the users table if needed.
func Open(ctx context.Context, driver, dsn string) (*SQL, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	d, err := New(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// New returns a Directory using db, creating the users table if needed.
func New(ctx context.Context, db *sql.DB, driver string) (*SQL, error) {
	if db == nil {
		return nil, errors.New("users: database connection is required")
	}
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("users: unsupported driver %q", driver)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("users: ensure table: %w", err)
	}
	return &SQL{db: db}, nil
}

func (d *SQL) Close() error { return d.db.Close() }

func (d *SQL) LookupByEmail(ctx context.Context, email string) (User, error) {
	const query = `
		SELECT id, email, login, first_name, last_name, nickname, registered, role, password_hash
		FROM users WHERE email = $1`
	var u User
	err := d.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Login, &u.FirstName, &u.LastName,
		&u.Nickname, &u.Registered, &u.Role, &u.PasswordHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: lookup: %w", err)
	}
	return u, nil
}

func (d *SQL) Create(ctx context.Context, u User, password string) (ID, error) {
	hash, err := hashPassword(password, d.Cost)
	if err != nil {
		return 0, err
	}
	const query = `
		INSERT INTO users (email, login, first_name, last_name, nickname, registered, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	var id ID
	err = d.db.QueryRowContext(ctx, query,
		u.Email, u.Login, u.FirstName, u.LastName,
		u.Nickname, u.Registered, u.Role, hash,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrExists
	}
	if err != nil {
		return 0, fmt.Errorf("users: create: %w", err)
	}
	return id, nil
}

func (d *SQL) Update(ctx context.Context, u User) error {
	const query = `UPDATE users SET email = $1, first_name = $2, last_name = $3 WHERE id = $4`
	res, err := d.db.ExecContext(ctx, query, u.Email, u.FirstName, u.LastName, u.ID)
	if isUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
