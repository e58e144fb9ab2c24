package mbox

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const archive = `From manager@company.com Mon Jan  1 09:00:00 2024
From: manager@company.com
Subject: Team Sync Meeting

Join us tomorrow at 3pm on Zoom.

From tracking@fedex.com Mon Jan  1 10:00:00 2024
From: tracking@fedex.com
Subject: Your package is out for delivery

Tracking number: 1234567890123

From winner@lottery-prize.com Mon Jan  1 11:00:00 2024
From: winner@lottery-prize.com
Subject: You won $1000!

Click here to claim your prize.
`

func TestReader_Next(t *testing.T) {
	r := NewReader(strings.NewReader(archive), zap.NewNop())

	first, err := r.Next()
	require.NoError(t, err)
	assert.Contains(t, string(first), "Subject: Team Sync Meeting")
	assert.NotContains(t, string(first), "fedex")

	second, err := r.Next()
	require.NoError(t, err)
	assert.Contains(t, string(second), "Tracking number: 1234567890123")

	third, err := r.Next()
	require.NoError(t, err)
	assert.Contains(t, string(third), "You won $1000!")

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_Empty(t *testing.T) {
	_, err := NewReader(strings.NewReader(""), zap.NewNop()).Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbox.mbox")
	require.NoError(t, os.WriteFile(path, []byte(archive), 0o600))

	r, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < 3; i++ {
		_, err := r.Next()
		require.NoError(t, err)
	}
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)

	_, err = Open(filepath.Join(t.TempDir(), "missing.mbox"), zap.NewNop())
	assert.Error(t, err)
}
