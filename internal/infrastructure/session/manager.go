package session

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/pkg/helpers"
)

const contextKey = "session"

// Manager ties the redis store to the signed session cookie.
type Manager struct {
	store  *Store
	tokens *helpers.SessionTokenManager
	cookie *helpers.Manager
	logger *logrus.Logger
}

func NewManager(store *Store, tokens *helpers.SessionTokenManager, cookie *helpers.Manager, logger *logrus.Logger) *Manager {
	return &Manager{store: store, tokens: tokens, cookie: cookie, logger: logger}
}

// Load resolves the request's session. A missing, tampered or expired cookie,
// or a session the store no longer has, yields a fresh anonymous session.
func (m *Manager) Load(c *gin.Context) *Session {
	raw := m.cookie.Get(c)
	if raw == "" {
		return m.store.New()
	}
	sid, err := m.tokens.Parse(raw)
	if err != nil {
		helpers.RequestLogger(m.logger, c).WithError(err).Debug("session cookie rejected")
		return m.store.New()
	}
	sess, err := m.store.Load(c.Request.Context(), sid)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			helpers.LogError(helpers.RequestLogger(m.logger, c), "session load failed", err, nil)
		}
		return m.store.New()
	}
	return sess
}

// Persist writes the session to the store without touching the response.
func (m *Manager) Persist(ctx context.Context, sess *Session) error {
	return m.store.Save(ctx, sess)
}

// WriteCookie points the client at sess and drops the id it had before the
// last Rotate. Persist alone never deletes the previous id.
func (m *Manager) WriteCookie(c *gin.Context, sess *Session) error {
	tok, exp, err := m.tokens.Sign(sess.ID)
	if err != nil {
		return err
	}
	m.cookie.Set(c, tok, exp)
	if err := m.store.DropPrevious(c.Request.Context(), sess); err != nil {
		helpers.LogError(helpers.RequestLogger(m.logger, c), "drop rotated session failed", err, nil)
	}
	return nil
}

// Save persists the session and refreshes the cookie.
func (m *Manager) Save(c *gin.Context, sess *Session) error {
	if err := m.Persist(c.Request.Context(), sess); err != nil {
		return err
	}
	return m.WriteCookie(c, sess)
}

// Discard drops a session that was persisted but never handed to the client.
func (m *Manager) Discard(ctx context.Context, sess *Session) {
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		m.logger.WithError(err).Warn("discard session failed")
	}
}

// Destroy removes the session from the store and expires the cookie.
func (m *Manager) Destroy(c *gin.Context, sess *Session) error {
	m.cookie.Clear(c)
	sess.ClearUserID()
	return m.store.Delete(c.Request.Context(), sess.ID)
}

// Attach stores sess on the request context for FromContext.
func Attach(c *gin.Context, sess *Session) {
	c.Set(contextKey, sess)
}

// FromContext returns the attached session, or an empty one.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	return newSession()
}
