package accounts_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	accounts "github.com/shopkit/go-accounts"
)

// fakeClock is a mutable clock shared by the component under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// sentEmail captures one dispatched message.
type sentEmail struct {
	To      string
	Subject string
	Body    string
}

// recorderMailer collects fire-and-forget sends for assertions.
type recorderMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (m *recorderMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recorderMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *recorderMailer) Last() (sentEmail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentEmail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// brokenStore simulates an unreachable credential store.
type brokenStore struct {
	err error
}

func (s *brokenStore) FindByEmail(context.Context, string) (*accounts.User, error) {
	return nil, s.err
}

func (s *brokenStore) FindByID(context.Context, uuid.UUID) (*accounts.User, error) {
	return nil, s.err
}

func (s *brokenStore) FindByResetTokenHash(context.Context, string) (*accounts.User, error) {
	return nil, s.err
}

func (s *brokenStore) Create(context.Context, *accounts.User) (*accounts.User, error) {
	return nil, s.err
}

func (s *brokenStore) Update(context.Context, *accounts.User) (*accounts.User, error) {
	return nil, s.err
}
