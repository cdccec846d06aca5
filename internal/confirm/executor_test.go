package confirm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPExecutor_FollowsRedirectsAndReportsFinalURL(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/verify/abc", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/verify/abc/step/success", http.StatusFound)
	})
	mux.HandleFunc("/verify/abc/step/success", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("You have been successfully verified."))
	})

	res, err := NewHTTPExecutor().Execute(context.Background(), server.URL+"/verify/abc")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, server.URL+"/verify/abc/step/success", res.FinalURL)
	assert.Contains(t, res.Text, "successfully verified")
}

func TestHTTPExecutor_SendsBrowserIdentity(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
	}))
	defer server.Close()

	_, err := NewHTTPExecutor().Execute(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotAccept, "text/html")
}

func TestHTTPExecutor_TransportErrorIsNotAClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	res, err := NewHTTPExecutor().Execute(context.Background(), server.URL)

	require.Error(t, err)
	assert.Nil(t, res)
}

func TestHTTPExecutor_RespectsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPExecutor().Execute(ctx, server.URL)
	require.Error(t, err)
}
