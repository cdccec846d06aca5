package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "mailtm", cfg.MailboxProvider)
	assert.Zero(t, cfg.AdminChatID)
}

func TestLoad_RequiresBotToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoad_DomainPoolRequiresDomain(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MAILBOX_PROVIDER", "domainpool")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAILBOX_DOMAIN")

	t.Setenv("MAILBOX_DOMAIN", "tempbox.example")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "domainpool", cfg.MailboxProvider)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("MAILBOX_PROVIDER", "gmail")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAILBOX_PROVIDER")
}

func TestLoad_ParsesAdminChatID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "-100200300")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(-100200300), cfg.AdminChatID)
}

func TestLoad_RejectsBogusAdminChatID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load environment variables")
}
