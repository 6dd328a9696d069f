package conversations

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/convokeeper/internal/common"
)

const findQ = `(?s)^SELECT\s+id,\s*title,\s*token_viewer,\s*token_writter,\s*created_at\s+FROM\s+conversations\s+WHERE\s+id\s*=\s*\$1\s*$`

const lockQ = `^SELECT id FROM conversations WHERE id = \$1 FOR UPDATE$`

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestFindByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "title", "token_viewer", "token_writter", "created_at"}).
		AddRow("conv-1", "standup", "v1", "w1", time.Now())
	mock.ExpectQuery(findQ).WithArgs("conv-1").WillReturnRows(rows)

	got, err := repo.FindByID(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.TokenViewer != "v1" || got.TokenWriter != "w1" || got.Title != "standup" {
		t.Fatalf("unexpected conversation: %+v", got)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQ).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByID(context.Background(), "nope"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQ).WithArgs("conv-1").WillReturnError(errors.New("db err"))

	_, err := repo.FindByID(context.Background(), "conv-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestLockByID(t *testing.T) {
	_, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockQ).WithArgs("conv-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("conv-1"))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := NewPostgresRepository(tx).LockByID(context.Background(), "conv-1"); err != nil {
		t.Fatalf("LockByID error: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLockByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(lockQ).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	if err := repo.LockByID(context.Background(), "nope"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestLockByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(lockQ).WithArgs("conv-1").WillReturnError(errors.New("db err"))

	err := repo.LockByID(context.Background(), "conv-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
