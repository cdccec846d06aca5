package mailbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restuaku/vet/internal/domain"
)

func TestDomainPool_CreateIsLocal(t *testing.T) {
	pool := NewDomainPool("http://unused.example", "inbox.example")

	mb, err := pool.Create(context.Background())

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(mb.Address, "@inbox.example"))
	local, _, _ := strings.Cut(mb.Address, "@")
	assert.Len(t, local, 12)
	assert.Empty(t, mb.Token)
}

func TestDomainPool_CreateRequiresDomain(t *testing.T) {
	pool := NewDomainPool("http://unused.example", "")

	_, err := pool.Create(context.Background())

	require.Error(t, err)
}

func TestDomainPool_Poll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getMessages", r.URL.Query().Get("action"))
		assert.Equal(t, "abc123", r.URL.Query().Get("login"))
		assert.Equal(t, "inbox.example", r.URL.Query().Get("domain"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 42, "from": "noreply@sheerid.com", "subject": "Verify"},
		})
	}))
	defer server.Close()

	pool := NewDomainPool(server.URL, "inbox.example")
	msgs, err := pool.Poll(context.Background(), &domain.Mailbox{Address: "abc123@inbox.example"})

	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0].ID)
	assert.Equal(t, "noreply@sheerid.com", msgs[0].From)
}

func TestDomainPool_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "readMessage", r.URL.Query().Get("action"))
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode(map[string]string{
			"textBody": "confirm at https://services.sheerid.com/verify/abc?emailToken=TOK",
			"htmlBody": "<p>confirm</p>",
		})
	}))
	defer server.Close()

	pool := NewDomainPool(server.URL, "inbox.example")
	body, err := pool.Fetch(context.Background(), &domain.Mailbox{Address: "abc123@inbox.example"}, "42")

	require.NoError(t, err)
	assert.Contains(t, body.Text, "emailToken=TOK")
	assert.Equal(t, "<p>confirm</p>", body.HTML)
}

func TestDomainPool_DeleteIsNoOp(t *testing.T) {
	pool := NewDomainPool("http://unused.example", "inbox.example")
	assert.NoError(t, pool.Delete(context.Background(), &domain.Mailbox{Address: "abc123@inbox.example"}))
}
