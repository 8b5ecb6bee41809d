package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailerDefaults(t *testing.T) {
	m := NewMailer(Config{})
	assert.Equal(t, "smtp.gmail.com", m.cfg.Host)
	assert.Equal(t, 587, m.cfg.Port)
	assert.False(t, m.Enabled())

	m = NewMailer(Config{Host: "mail.example.com", Port: 25, From: "lib@example.com", Password: "secret"})
	assert.Equal(t, "mail.example.com", m.cfg.Host)
	assert.True(t, m.Enabled())
}

func TestSendWithoutCredentials(t *testing.T) {
	m := NewMailer(Config{})

	err := m.ReservationReady("to@example.com", "Maria Santos", "The Art of War")
	require.ErrorIs(t, err, ErrNoCredentials)

	err = m.OverdueReminder("to@example.com", "Maria Santos", "The Art of War", time.Now())
	require.ErrorIs(t, err, ErrNoCredentials)
}
