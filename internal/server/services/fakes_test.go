package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/convokeeper/internal/common"
	"github.com/dmitrijs2005/convokeeper/internal/dbx"
	"github.com/dmitrijs2005/convokeeper/internal/server/models"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/collaborations"
	"github.com/dmitrijs2005/convokeeper/internal/server/repositories/conversations"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memStore backs all fake repositories. It is shared across the fakes the
// manager hands out, whatever DBTX they were asked for.
type memStore struct {
	mu            sync.Mutex
	accounts      map[string]*models.Account
	conversations map[string]*models.Conversation
	collabs       map[string]*models.Collaboration
	seq           int

	lookupErr     error // returned by account lookups when set
	saveErr       error // returned by Account saves when set
	locked        []string
	findByMailCnt int
	saveCnt       int
}

func newMemStore() *memStore {
	return &memStore{
		accounts:      map[string]*models.Account{},
		conversations: map[string]*models.Conversation{},
		collabs:       map[string]*models.Collaboration{},
	}
}

func pairKey(conversationID, userID string) string { return conversationID + "|" + userID }

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) addAccount(a *models.Account) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.nextID("acc")
	}
	s.accounts[a.ID] = a
	return a
}

func (s *memStore) addConversation(c *models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.ID] = c
}

func (s *memStore) addCollab(conversationID, userID string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collabs[pairKey(conversationID, userID)] = &models.Collaboration{
		ID: s.nextID("col"), ConversationID: conversationID, UserID: userID, Role: role,
	}
}

func (s *memStore) collab(conversationID, userID string) *models.Collaboration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collabs[pairKey(conversationID, userID)]
}

func (s *memStore) collabCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collabs)
}

// --- accounts ---

type fakeAccounts struct{ s *memStore }

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, x := range f.s.accounts {
		if x.Mail == a.Mail {
			return nil, common.ErrConflict
		}
	}
	cp := *a
	cp.ID = f.s.nextID("acc")
	cp.CreatedAt = time.Now()
	f.s.accounts[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeAccounts) FindByMail(ctx context.Context, mail string) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.findByMailCnt++
	if f.s.lookupErr != nil {
		return nil, f.s.lookupErr
	}
	for _, a := range f.s.accounts {
		if a.Mail == mail {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) FindByID(ctx context.Context, id string) (*models.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.lookupErr != nil {
		return nil, f.s.lookupErr
	}
	a, ok := f.s.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) Save(ctx context.Context, a *models.Account) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.saveErr != nil {
		return f.s.saveErr
	}
	if _, ok := f.s.accounts[a.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *a
	f.s.accounts[a.ID] = &cp
	f.s.saveCnt++
	return nil
}

// --- conversations ---

type fakeConversations struct{ s *memStore }

func (f *fakeConversations) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.conversations[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConversations) LockByID(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.conversations[id]; !ok {
		return common.ErrorNotFound
	}
	f.s.locked = append(f.s.locked, id)
	return nil
}

// --- collaborations ---

type fakeCollabs struct{ s *memStore }

func (f *fakeCollabs) FindByPair(ctx context.Context, conversationID, userID string) (*models.Collaboration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.collabs[pairKey(conversationID, userID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCollabs) Insert(ctx context.Context, c *models.Collaboration) (*models.Collaboration, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	k := pairKey(c.ConversationID, c.UserID)
	if _, ok := f.s.collabs[k]; ok {
		return nil, common.ErrConflict
	}
	cp := *c
	cp.ID = f.s.nextID("col")
	cp.CreatedAt = time.Now()
	f.s.collabs[k] = &cp
	out := cp
	return &out, nil
}

func (f *fakeCollabs) UpdateRole(ctx context.Context, id string, role models.Role) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.collabs {
		if c.ID == id {
			c.Role = role
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCollabs) Delete(ctx context.Context, conversationID, userID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	k := pairKey(conversationID, userID)
	if _, ok := f.s.collabs[k]; !ok {
		return false, nil
	}
	delete(f.s.collabs, k)
	return true, nil
}

func (f *fakeCollabs) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, c := range f.s.collabs {
		if c.ConversationID == conversationID {
			n++
		}
	}
	return n, nil
}

// --- manager ---

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository  { return &fakeAccounts{m.s} }
func (m *fakeRepoManager) Collaborations(db dbx.DBTX) collaborations.Repository {
	return &fakeCollabs{m.s}
}
func (m *fakeRepoManager) Conversations(db dbx.DBTX) conversations.Repository {
	return &fakeConversations{m.s}
}
