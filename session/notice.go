package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smallnest/mindcanvas/canvas"
	"github.com/smallnest/mindcanvas/expand"
	"github.com/smallnest/mindcanvas/generator"
)

// DefaultNoticeTTL is how long a notice stays visible.
const DefaultNoticeTTL = 5 * time.Second

// NoticeLevel classifies a notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

func (l NoticeLevel) String() string {
	if l == NoticeError {
		return "error"
	}
	return "info"
}

// Notice is a transient, dismissible message for the user.
type Notice struct {
	ID      string
	Level   NoticeLevel
	Message string
	Expires time.Time
}

// postLocked adds a notice. Called with s.mu held.
func (s *Session) postLocked(level NoticeLevel, format string, args ...any) Notice {
	n := Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
		Expires: s.now().Add(s.noticeTTL),
	}
	s.notices = append(s.notices, n)
	return n
}

func (s *Session) post(level NoticeLevel, format string, args ...any) Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postLocked(level, format, args...)
}

// Notices returns the notices that have not expired, oldest first.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

// Dismiss removes a notice before it expires.
func (s *Session) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) expireLocked(now time.Time) {
	kept := s.notices[:0]
	for _, n := range s.notices {
		if now.Before(n.Expires) {
			kept = append(kept, n)
		}
	}
	s.notices = kept
}

// report turns a surfaced failure into a notice. Abandoned expansions and activations
// that arrive while another expansion runs are dropped silently.
func (s *Session) report(op string, err error) {
	switch {
	case err == nil, errors.Is(err, expand.ErrAbandoned):
		return
	case errors.Is(err, expand.ErrBusy):
		s.logger.Debug("%s ignored: %v", op, err)
		return
	case errors.Is(err, canvas.ErrInvalidConcept):
		s.post(NoticeError, "Please enter a concept")
	case errors.Is(err, expand.ErrNothingToSummarize):
		s.post(NoticeInfo, "The canvas is empty, nothing to summarize")
	case errors.Is(err, context.DeadlineExceeded):
		s.post(NoticeError, "%s timed out, please try again", op)
	case generator.IsParseError(err):
		s.post(NoticeError, "%s returned an unexpected response", op)
	case generator.IsCallError(err):
		s.post(NoticeError, "%s failed, please try again", op)
	default:
		s.post(NoticeError, "%s failed: %v", op, err)
	}
	s.logger.Warn("%s: %v", op, err)
}
