package flow

import (
	"sync"

	"github.com/restuaku/vet/internal/domain"
)

// Store holds per-applicant in-flight session and mailbox state. Access is
// serialized per applicant by the chat transport, but timer callbacks and
// poll cycles arrive on their own goroutines, so the maps are mutex-guarded.
type Store struct {
	mu        sync.Mutex
	sessions  map[int64]*domain.Session
	mailboxes map[int64]*domain.Mailbox
}

func NewStore() *Store {
	return &Store{
		sessions:  make(map[int64]*domain.Session),
		mailboxes: make(map[int64]*domain.Mailbox),
	}
}

func (s *Store) GetSession(applicantID int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[applicantID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) PutSession(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ApplicantID] = sess
}

// ReplaceSession stores sess only if a session for the applicant is still
// present. A timeout callback may tear the session down between a handler's
// read and its write; replacing nothing keeps it torn down.
func (s *Store) ReplaceSession(sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ApplicantID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.sessions[sess.ApplicantID] = sess
	return nil
}

func (s *Store) DeleteSession(applicantID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, applicantID)
}

func (s *Store) GetMailbox(applicantID int64) (*domain.Mailbox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mb, ok := s.mailboxes[applicantID]
	if !ok {
		return nil, domain.ErrMailboxNotFound
	}
	return mb, nil
}

func (s *Store) PutMailbox(mb *domain.Mailbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mailboxes[mb.ApplicantID] = mb
}

func (s *Store) DeleteMailbox(applicantID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mailboxes, applicantID)
}
