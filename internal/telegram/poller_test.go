package telegram

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	op  string
	id  int64
	arg string
}

type fakeFlow struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeFlow) record(op string, id int64, arg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{op, id, arg})
}

func (f *fakeFlow) Start(_ context.Context, id int64)              { f.record("start", id, "") }
func (f *fakeFlow) Input(_ context.Context, id int64, text string) { f.record("input", id, text) }
func (f *fakeFlow) Select(_ context.Context, id int64, key string) { f.record("select", id, key) }
func (f *fakeFlow) Cancel(_ context.Context, id int64)             { f.record("cancel", id, "") }

func message(chatID int64, text string) Update {
	return Update{Message: &Message{Chat: Chat{ID: chatID}, Text: text}}
}

func TestPoller_DispatchCommands(t *testing.T) {
	flow := &fakeFlow{}
	p := NewPoller(nil, flow)
	ctx := context.Background()

	p.dispatch(ctx, message(77, "/veteran"))
	p.dispatch(ctx, message(77, "/start"))
	p.dispatch(ctx, message(77, "/cancel"))
	p.dispatch(ctx, message(77, "/VETERAN@SomeBot extra"))

	require.Len(t, flow.calls, 4)
	assert.Equal(t, recordedCall{"start", 77, ""}, flow.calls[0])
	assert.Equal(t, recordedCall{"start", 77, ""}, flow.calls[1])
	assert.Equal(t, recordedCall{"cancel", 77, ""}, flow.calls[2])
	assert.Equal(t, recordedCall{"start", 77, ""}, flow.calls[3])
}

func TestPoller_DispatchFreeText(t *testing.T) {
	flow := &fakeFlow{}
	p := NewPoller(nil, flow)

	p.dispatch(context.Background(), message(77, "  John Smith  "))

	require.Len(t, flow.calls, 1)
	assert.Equal(t, recordedCall{"input", 77, "John Smith"}, flow.calls[0])
}

func TestPoller_DispatchIgnoresEmptyText(t *testing.T) {
	flow := &fakeFlow{}
	p := NewPoller(nil, flow)

	p.dispatch(context.Background(), message(77, "   "))
	assert.Empty(t, flow.calls)
}

func TestPoller_DispatchCallback(t *testing.T) {
	flow := &fakeFlow{}
	// Acknowledgement failures must not block routing; the client points at
	// a server that rejects every call.
	rejecting := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"boom"}`))
	})
	p := NewPoller(rejecting, flow)

	p.dispatch(context.Background(), Update{CallbackQuery: &CallbackQuery{
		ID:   "cb1",
		From: &User{ID: 77},
		Data: "org_Navy",
	}})

	require.Len(t, flow.calls, 1)
	assert.Equal(t, recordedCall{"select", 77, "org_Navy"}, flow.calls[0])
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "/veteran", command("/veteran"))
	assert.Equal(t, "/veteran", command("/Veteran@MyBot please"))
	assert.Equal(t, "", command("hello /veteran"))
	assert.Equal(t, "", command("plain text"))
}
