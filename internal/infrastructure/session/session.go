package session

import (
	"strconv"

	"github.com/google/uuid"
)

// Session is the server-side state referenced by the session cookie. The only
// value it carries is the authenticated user's id.
type Session struct {
	ID string

	userID    string
	hasUserID bool
	// previousID is dropped from the store once the client holds the new id.
	previousID string
}

func newSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// UserID returns the stored user id and whether the key is present at all.
// A present but empty or non-numeric value reports (0, true).
func (s *Session) UserID() (int64, bool) {
	if s == nil || !s.hasUserID {
		return 0, false
	}
	id, err := strconv.ParseInt(s.userID, 10, 64)
	if err != nil {
		return 0, true
	}
	return id, true
}

// Authenticated reports whether the session holds a truthy user id.
func (s *Session) Authenticated() bool {
	id, ok := s.UserID()
	return ok && id > 0
}

func (s *Session) SetUserID(id int64) {
	s.userID = strconv.FormatInt(id, 10)
	s.hasUserID = true
}

func (s *Session) ClearUserID() {
	s.userID = ""
	s.hasUserID = false
}

// Rotate gives the session a fresh id, used on every authentication.
func (s *Session) Rotate() {
	if s.previousID == "" {
		s.previousID = s.ID
	}
	s.ID = uuid.NewString()
}
