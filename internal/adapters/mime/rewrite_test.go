package mime

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "From: a@example.com\r\nSubject: You won $1000\r\nX-Category: old\r\n\r\nbody line 1\r\nbody line 2\r\n"

func TestRewrite_PrependsFields(t *testing.T) {
	out, err := Rewrite([]byte(sample), []Field{
		{Key: "X-Category", Value: "Phishing"},
		{Key: "X-Reason", Value: "multi\r\nline   value"},
	}, "")
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "X-Category: Phishing\r\nX-Reason: multi line value\r\n"), s)
	assert.NotContains(t, s, "X-Category: old")
	assert.Contains(t, s, "Subject: You won $1000\r\n")
	assert.True(t, strings.HasSuffix(s, "\r\n\r\nbody line 1\r\nbody line 2\r\n"))
}

func TestRewrite_SubjectPrefix(t *testing.T) {
	out, err := Rewrite([]byte(sample), nil, "[PHISHING] ")
	require.NoError(t, err)
	assert.Contains(t, string(out), "Subject: [PHISHING] You won $1000\r\n")

	again, err := Rewrite(out, nil, "[PHISHING] ")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(again), "[PHISHING]"))
}

func TestRewrite_InvalidHeader(t *testing.T) {
	_, err := Rewrite([]byte("no header separator here"), nil, "")
	assert.Error(t, err)
}
