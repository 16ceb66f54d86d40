package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name:     "simple key-value",
			content:  "BOOKCHECK_BASE_URL=http://localhost:3000",
			expected: map[string]string{"BOOKCHECK_BASE_URL": "http://localhost:3000"},
		},
		{
			name:     "double quoted value",
			content:  `CLIENT_NAME="Ada Lovelace"`,
			expected: map[string]string{"CLIENT_NAME": "Ada Lovelace"},
		},
		{
			name:     "single quoted value",
			content:  `CLIENT_NAME='Grace Hopper'`,
			expected: map[string]string{"CLIENT_NAME": "Grace Hopper"},
		},
		{
			name:     "comments and blank lines are skipped",
			content:  "# comment\n\nKEY1=value1\n\nKEY2=value2",
			expected: map[string]string{"KEY1": "value1", "KEY2": "value2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := LoadDotEnv(path)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	_, err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read env file")
}

func TestLoadAndExportDotEnv_DoesNotOverride(t *testing.T) {
	t.Setenv("BOOKCHECK_TEST_EXISTING", "from-process")
	path := filepath.Join(t.TempDir(), ".env")
	content := "BOOKCHECK_TEST_EXISTING=from-file\nBOOKCHECK_TEST_NEW=fresh"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("BOOKCHECK_TEST_NEW") })

	_, err := LoadAndExportDotEnv(path)

	require.NoError(t, err)
	assert.Equal(t, "from-process", os.Getenv("BOOKCHECK_TEST_EXISTING"))
	assert.Equal(t, "fresh", os.Getenv("BOOKCHECK_TEST_NEW"))
}

func TestLoadSystemEnv(t *testing.T) {
	t.Setenv("BOOKCHECK_TEST_TIMEOUT", "5s")

	vars := LoadSystemEnv("BOOKCHECK_TEST_")

	assert.Equal(t, "5s", vars["TIMEOUT"])
	assert.NotContains(t, vars, "BOOKCHECK_TEST_TIMEOUT")
}
