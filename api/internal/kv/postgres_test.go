package kv

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func TestPostgresGet(t *testing.T) {
	it(func() {
		s := NewPostgres(db)

		mock.ExpectQuery(regexp.QuoteMeta(qGet)).
			WithArgs("@printapp_flashcards_算数").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"subject":"算数"}`)))

		v, ok, err := s.Get(context.Background(), "@printapp_flashcards_算数")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !ok || string(v) != `{"subject":"算数"}` {
			t.Errorf("got ok=%v value=%s", ok, v)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestPostgresGetAbsent(t *testing.T) {
	it(func() {
		s := NewPostgres(db)

		mock.ExpectQuery(regexp.QuoteMeta(qGet)).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		v, ok, err := s.Get(context.Background(), "missing")
		if err != nil {
			t.Fatalf("absent key must not error: %v", err)
		}
		if ok || v != nil {
			t.Errorf("got ok=%v value=%v, want absent", ok, v)
		}
	})
}

func TestPostgresGetFailure(t *testing.T) {
	it(func() {
		s := NewPostgres(db)

		mock.ExpectQuery(regexp.QuoteMeta(qGet)).
			WithArgs("k").
			WillReturnError(fmt.Errorf("connection reset"))

		_, _, err := s.Get(context.Background(), "k")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestPostgresSet(t *testing.T) {
	it(func() {
		s := NewPostgres(db)

		mock.ExpectExec(regexp.QuoteMeta(qSet)).
			WithArgs("k", []byte(`{"a":1}`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := s.Set(context.Background(), "k", []byte(`{"a":1}`)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestPostgresDelete(t *testing.T) {
	it(func() {
		s := NewPostgres(db)

		mock.ExpectExec(regexp.QuoteMeta(qDelete)).
			WithArgs("k").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := s.Delete(context.Background(), "k"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	})
}

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("fresh store must be empty")
	}
	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, _ := s.Get(ctx, "k")
	if !ok || string(v) != "v1" {
		t.Errorf("got %q ok=%v", v, ok)
	}

	// returned slice is a copy; mutating it must not corrupt the store
	v[0] = 'x'
	v2, _, _ := s.Get(ctx, "k")
	if string(v2) != "v1" {
		t.Errorf("store aliased its value: %q", v2)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key survived delete")
	}
}
