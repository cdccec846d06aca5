package adminlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restuaku/vet/internal/domain"
)

func newTestSink(t *testing.T, handler http.HandlerFunc) *Sink {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sink := New("test-token", 42)
	sink.baseURL = server.URL
	return sink
}

func TestSink_SendsToConfiguredChat(t *testing.T) {
	var got map[string]any
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	sink.FlowStarted(context.Background(), 7)

	assert.Equal(t, float64(42), got["chat_id"])
	assert.Contains(t, got["text"], "started a verification flow")
	assert.Equal(t, "Markdown", got["parse_mode"])
}

func TestSink_SubmissionFailureIncludesError(t *testing.T) {
	var got map[string]any
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	sink.SubmissionResult(context.Background(), domain.SubmissionRecord{
		ApplicantID: 7,
		FullName:    "John Smith",
		Email:       "x@y.example",
		CurrentStep: "error",
		Success:     false,
		ErrorMsg:    "status 404 from collectMilitaryStatus",
	})

	text, _ := got["text"].(string)
	assert.Contains(t, text, "FAILED")
	assert.Contains(t, text, "status 404 from collectMilitaryStatus")
}

func TestSink_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	sink := newTestSink(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	sink.ConfirmationOutcome(context.Background(), 7, domain.OutcomeApproved, "provider step: success")

	assert.Equal(t, int32(3), calls.Load())
}

func TestSink_UnconfiguredIsNoop(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	sink := New("", 0)
	sink.baseURL = server.URL

	sink.FlowStarted(context.Background(), 7)
	sink.SubmissionResult(context.Background(), domain.SubmissionRecord{})
	sink.ConfirmationOutcome(context.Background(), 7, domain.OutcomePending, "")

	assert.Equal(t, int32(0), calls.Load())
}

func TestSink_NilReceiverIsSafe(t *testing.T) {
	var sink *Sink
	sink.FlowStarted(context.Background(), 7)
}
