package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/dbx"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (id, mail, password_hash, salt, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	id := uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		id, account.Mail, nullable(account.PasswordHash), nullable(account.Salt), string(account.Status)).
		Scan(&account.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("mail %q: %w", account.Mail, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.ID = id
	return account, nil
}

func (r *PostgresRepository) FindByMail(ctx context.Context, mail string) (*models.Account, error) {
	query :=
		`SELECT id, mail, password_hash, salt, status, last_login, created_at FROM accounts
		 WHERE mail = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, mail))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, mail, password_hash, salt, status, last_login, created_at FROM accounts
		 WHERE id = $1
		 `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Save(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts SET password_hash = $2, salt = $3, status = $4, last_login = $5
		 WHERE id = $1
		 `

	var lastLogin sql.NullTime
	if account.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *account.LastLogin, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		account.ID, nullable(account.PasswordHash), nullable(account.Salt), string(account.Status), lastLogin)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	var (
		a         models.Account
		hash      sql.NullString
		salt      sql.NullString
		status    string
		lastLogin sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Mail, &hash, &salt, &status, &lastLogin, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.Status = models.AccountStatus(status)
	// a half-present pair is treated as no credentials at all
	if hash.Valid && salt.Valid {
		a.SetCredentials(hash.String, salt.String)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLogin = &t
	}
	return &a, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
