package imap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/core"
)

func TestFiler_Folder(t *testing.T) {
	tests := []struct {
		prefix   string
		category core.Category
		expect   string
	}{
		{"Triage", core.CategoryMeetings, "Triage/Meetings"},
		{"Triage", core.CategoryPhishing, "Triage/Phishing"},
		{"", core.CategoryDeliveries, "Deliveries"},
	}
	for _, tt := range tests {
		f, err := NewFiler(Options{FolderPrefix: tt.prefix, DryRun: true}, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, tt.expect, f.Folder(tt.category))
	}
}

func TestFiler_DryRun(t *testing.T) {
	f, err := NewFiler(Options{FolderPrefix: "Triage", DryRun: true}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.File(ctx, core.CategoryMeetings, []byte("a")))
	require.NoError(t, f.File(ctx, core.CategoryMeetings, []byte("b")))
	require.NoError(t, f.File(ctx, core.CategoryPhishing, []byte("c")))

	assert.Equal(t, map[core.Category]int{
		core.CategoryMeetings: 2,
		core.CategoryPhishing: 1,
	}, f.Counts())
	assert.NoError(t, f.Close())
}

func TestFiler_RequiresAddress(t *testing.T) {
	_, err := NewFiler(Options{}, zap.NewNop())
	assert.Error(t, err)
}

func TestFiler_CanceledContext(t *testing.T) {
	f, err := NewFiler(Options{DryRun: true}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.File(ctx, core.CategoryImportant, []byte("x")), context.Canceled)
	assert.Empty(t, f.Counts())
}
