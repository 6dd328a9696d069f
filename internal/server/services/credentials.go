// Package services contains the access core: credential checks, role lookups,
// role mutations and token-based joins. Services are plain values built once
// at startup and shared by all requests.
package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/cryptox"
	"github.com/dmitrijs2005/convokeeper/internal/logging"
	"github.com/dmitrijs2005/convokeeper/internal/normalize"
	"github.com/dmitrijs2005/convokeeper/internal/server/config"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/repomanager"
	"golang.org/x/sync/semaphore"
)

// CredentialVerifier registers accounts and checks passwords against them.
//
// Authenticate never tells the caller why a login failed: unknown mail, wrong
// password, missing credentials, inactive account and throttling all come
// back as common.ErrInvalidCredentials. The reason is logged.
type CredentialVerifier struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	params      cryptox.Params
	throttle    Throttle
	hashSlots   *semaphore.Weighted
	logger      logging.Logger
	now         func() time.Time

	// decoyHash and decoySalt are verified against when there is no stored
	// hash, so every looked-up login costs one derivation.
	decoyHash  string
	decoySalt  string
	verifyHash func(password, hash, salt string, p cryptox.Params) bool
}

// NewCredentialVerifier constructs a CredentialVerifier. Hashing parameters and
// the number of concurrent PBKDF2 computations come from cfg.
func NewCredentialVerifier(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, t Throttle, l logging.Logger) *CredentialVerifier {
	slots := int64(cfg.HashConcurrency)
	if slots < 1 {
		slots = 1
	}
	params := cfg.HashParams()
	decoyHash, decoySalt := decoyCredentials(params)
	return &CredentialVerifier{
		db:          db,
		repomanager: m,
		params:      params,
		throttle:    t,
		hashSlots:   semaphore.NewWeighted(slots),
		logger:      l.With("module", "credentials"),
		now:         time.Now,
		decoyHash:   decoyHash,
		decoySalt:   decoySalt,
		verifyHash:  cryptox.VerifyPassword,
	}
}

// Authenticate returns the account owning mail if password matches and the
// account is active. On success last_login is updated and any throttle entry
// for mail is cleared.
func (s *CredentialVerifier) Authenticate(ctx context.Context, mail, password string) (*models.Account, error) {
	mail = normalize.Email(mail)
	log := s.logger.With("mail", mail)

	if !normalize.ValidEmail(mail) || password == "" {
		log.Debug(ctx, "login rejected", "reason", "malformed input")
		return nil, common.ErrInvalidCredentials
	}

	if s.throttle.Blocked(mail) {
		log.Warn(ctx, "login rejected", "reason", "throttled")
		return nil, common.ErrInvalidCredentials
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.FindByMail(ctx, mail)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if _, err := s.verify(ctx, password, s.decoyHash, s.decoySalt); err != nil {
				return nil, err
			}
			s.throttle.RecordFailure(mail)
			log.Warn(ctx, "login rejected", "reason", "unknown mail")
			return nil, common.ErrInvalidCredentials
		}
		log.Error(ctx, "account lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !account.HasCredentials() {
		if _, err := s.verify(ctx, password, s.decoyHash, s.decoySalt); err != nil {
			return nil, err
		}
		s.throttle.RecordFailure(mail)
		log.Warn(ctx, "login rejected", "reason", "no credentials")
		return nil, common.ErrInvalidCredentials
	}

	ok, err := s.verify(ctx, password, account.PasswordHash, account.Salt)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.throttle.RecordFailure(mail)
		log.Warn(ctx, "login rejected", "reason", "wrong password")
		return nil, common.ErrInvalidCredentials
	}

	if account.Status != models.AccountActive {
		log.Warn(ctx, "login rejected", "reason", "account "+string(account.Status))
		return nil, common.ErrInvalidCredentials
	}

	now := s.now()
	account.LastLogin = &now
	if err := repo.Save(ctx, account); err != nil {
		log.Error(ctx, "saving last login failed", "error", err)
		return nil, common.ErrInvalidCredentials
	}
	s.throttle.Clear(mail)

	log.Info(ctx, "login succeeded", "account_id", account.ID)
	return account, nil
}

// Register creates an active account for mail with a freshly salted hash of
// password. A mail that is already taken yields common.ErrConflict.
func (s *CredentialVerifier) Register(ctx context.Context, mail, password string) (*models.Account, error) {
	mail = normalize.Email(mail)
	if !normalize.ValidEmail(mail) {
		return nil, fmt.Errorf("%w: malformed mail", common.ErrInvalidArgument)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: empty password", common.ErrInvalidArgument)
	}

	hash, salt, err := s.newCredentials(ctx, password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{Mail: mail, Status: models.AccountActive}
	account.SetCredentials(hash, salt)

	created, err := s.repomanager.Accounts(s.db).Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", created.ID)
	return created, nil
}

// SetPassword replaces the credentials of accountID with a hash of password
// under a new salt.
func (s *CredentialVerifier) SetPassword(ctx context.Context, accountID, password string) error {
	if password == "" {
		return fmt.Errorf("%w: empty password", common.ErrInvalidArgument)
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	hash, salt, err := s.newCredentials(ctx, password)
	if err != nil {
		return err
	}
	account.SetCredentials(hash, salt)

	if err := repo.Save(ctx, account); err != nil {
		return fmt.Errorf("error saving account: %w", err)
	}
	s.logger.Info(ctx, "password changed", "account_id", account.ID)
	return nil
}

// --- helpers below ---

func (s *CredentialVerifier) newCredentials(ctx context.Context, password string) (hash, salt string, err error) {
	salt, err = cryptox.GenerateSalt(s.params)
	if err != nil {
		return "", "", err
	}
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return "", "", err
	}
	defer s.hashSlots.Release(1)

	hash, err = cryptox.HashPassword(password, salt, s.params)
	if err != nil {
		return "", "", err
	}
	return hash, salt, nil
}

func (s *CredentialVerifier) verify(ctx context.Context, password, hash, salt string) (bool, error) {
	if err := s.hashSlots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer s.hashSlots.Release(1)
	return s.verifyHash(password, hash, salt, s.params), nil
}

// decoyCredentials returns a well-formed hash and salt pair that no password
// is expected to match.
func decoyCredentials(p cryptox.Params) (hash, salt string) {
	raw, err := common.RandomBytes(max(p.SaltLength, 1))
	if err != nil {
		raw = make([]byte, max(p.SaltLength, 1))
	}
	key := make([]byte, max(p.KeyLength, 1))
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(raw)
}
