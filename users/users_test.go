package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"kr.dev/diff"
)

func newSQLite(t *testing.T) *SQL {
	t.Helper()
	db, err := sql.Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// each connection to :memory: is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	d, err := New(context.Background(), db, DriverSQLite)
	if err != nil {
		t.Fatal(err)
	}
	d.Cost = bcrypt.MinCost
	return d
}

func testDirectory(t *testing.T, d Directory) {
	t.Helper()
	ctx := context.Background()

	if _, err := d.LookupByEmail(ctx, "a@b.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LookupByEmail on empty directory = %v; want ErrNotFound", err)
	}

	id, err := d.Create(ctx, User{
		Email:      "a@b.com",
		Login:      "a@b.com",
		FirstName:  "A",
		LastName:   "B",
		Nickname:   "ab",
		Registered: "2020-01-01",
		Role:       "chargify_user",
	}, "s3cret")
	if err != nil {
		t.Fatal(err)
	}

	got, err := d.LookupByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CheckPassword("s3cret") {
		t.Error("password not stored")
	}
	if got.CheckPassword("wrong") {
		t.Error("wrong password accepted")
	}
	got.PasswordHash = nil
	diff.Test(t, t.Errorf, got, User{
		ID:         id,
		Email:      "a@b.com",
		Login:      "a@b.com",
		FirstName:  "A",
		LastName:   "B",
		Nickname:   "ab",
		Registered: "2020-01-01",
		Role:       "chargify_user",
	})

	if _, err := d.Create(ctx, User{Email: "a@b.com", Login: "x"}, "x"); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Create = %v; want ErrExists", err)
	}

	err = d.Update(ctx, User{ID: id, Email: "a@b.com", FirstName: "A2", LastName: "B2", Login: "ignored"})
	if err != nil {
		t.Fatal(err)
	}
	got, err = d.LookupByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, got.ID, id)
	diff.Test(t, t.Errorf, got.FirstName, "A2")
	diff.Test(t, t.Errorf, got.LastName, "B2")
	diff.Test(t, t.Errorf, got.Login, "a@b.com")

	if err := d.Update(ctx, User{ID: id + 100, Email: "z@b.com"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update of missing user = %v; want ErrNotFound", err)
	}

	id2, err := d.Create(ctx, User{Email: "c@d.com", Login: "c@d.com"}, "x")
	if err != nil {
		t.Fatal(err)
	}
	if id2 == id {
		t.Errorf("second user reused id %d", id)
	}
	if err := d.Update(ctx, User{ID: id2, Email: "a@b.com"}); !errors.Is(err, ErrExists) {
		t.Errorf("Update to taken email = %v; want ErrExists", err)
	}
}

func TestMemory(t *testing.T) {
	testDirectory(t, &Memory{Cost: bcrypt.MinCost})
}

func TestSQLite(t *testing.T) {
	testDirectory(t, newSQLite(t))
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, nil, DriverSQLite); err == nil {
		t.Error("expected error for nil db")
	}

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := New(ctx, db, "mysql"); err == nil {
		t.Error("expected error for unsupported driver")
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("disk full"))
	if _, err := New(ctx, db, DriverPostgres); err == nil {
		t.Error("expected error when table creation fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func newMock(t *testing.T) (*SQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	d, err := New(context.Background(), db, DriverPostgres)
	if err != nil {
		t.Fatal(err)
	}
	d.Cost = bcrypt.MinCost
	return d, mock
}

func TestSQLLookupError(t *testing.T) {
	d, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("a@b.com").
		WillReturnError(boom)

	_, err := d.LookupByEmail(context.Background(), "a@b.com")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v; want %v", err, boom)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("lookup failure reported as ErrNotFound")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLCreateUniqueViolation(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := d.Create(context.Background(), User{Email: "a@b.com"}, "x")
	if !errors.Is(err, ErrExists) {
		t.Errorf("err = %v; want ErrExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSQLCreateReturnsID(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := d.Create(context.Background(), User{Email: "a@b.com"}, "x")
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, id, ID(7))
}

func TestSQLUpdateNoRows(t *testing.T) {
	d, mock := newMock(t)
	mock.ExpectExec("UPDATE users SET").
		WithArgs("a@b.com", "A", "B", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := d.Update(context.Background(), User{ID: 3, Email: "a@b.com", FirstName: "A", LastName: "B"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}
