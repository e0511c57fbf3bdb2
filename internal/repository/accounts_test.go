package repository

import (
	"os"
	"path/filepath"
	"testing"

	"rewards_quest_bot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAccounts(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expected    []model.Account
		expectedErr error
	}{
		{
			name:    "Plain lines",
			content: "tok1\ntok2\n",
			expected: []model.Account{
				{Index: 1, Token: "tok1"},
				{Index: 2, Token: "tok2"},
			},
		},
		{
			name:    "Blank lines and CRLF",
			content: "\r\ntok1\r\n\r\n   \ntok2",
			expected: []model.Account{
				{Index: 1, Token: "tok1"},
				{Index: 2, Token: "tok2"},
			},
		},
		{
			name:        "Empty file",
			content:     "\n\n",
			expectedErr: ErrNoAccounts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts, err := LoadAccounts(writeFile(t, tt.content))
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, accounts)
		})
	}
}

func TestLoadAccounts_MissingFile(t *testing.T) {
	_, err := LoadAccounts(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
