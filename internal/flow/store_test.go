package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restuaku/vet/internal/domain"
)

func TestStore_SessionRoundtrip(t *testing.T) {
	store := NewStore()

	_, err := store.GetSession(7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	store.PutSession(&domain.Session{ApplicantID: 7, VerificationID: "abc"})
	sess, err := store.GetSession(7)
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.VerificationID)

	store.DeleteSession(7)
	_, err = store.GetSession(7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_SessionsAreIndependentPerApplicant(t *testing.T) {
	store := NewStore()
	store.PutSession(&domain.Session{ApplicantID: 1})
	store.PutSession(&domain.Session{ApplicantID: 2})

	store.DeleteSession(1)

	_, err := store.GetSession(2)
	assert.NoError(t, err)
}

func TestStore_ReplaceSessionRequiresPresence(t *testing.T) {
	store := NewStore()
	sess := &domain.Session{ApplicantID: 7, CurrentStep: domain.StepURL}

	err := store.ReplaceSession(sess)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = store.GetSession(7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	store.PutSession(sess)
	sess.CurrentStep = domain.StepStatus
	require.NoError(t, store.ReplaceSession(sess))

	got, err := store.GetSession(7)
	require.NoError(t, err)
	assert.Equal(t, domain.StepStatus, got.CurrentStep)
}

func TestStore_MailboxRoundtrip(t *testing.T) {
	store := NewStore()

	store.PutMailbox(&domain.Mailbox{ApplicantID: 7, Address: "x@y.example"})
	mb, err := store.GetMailbox(7)
	require.NoError(t, err)
	assert.Equal(t, "x@y.example", mb.Address)

	store.DeleteMailbox(7)
	_, err = store.GetMailbox(7)
	assert.ErrorIs(t, err, domain.ErrMailboxNotFound)

	store.DeleteMailbox(7) // idempotent
}
