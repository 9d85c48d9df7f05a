package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/ymatch", dir)

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/home")
	dir, err = Dir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/home/.config/ymatch", dir)
}

func TestLoadAliases_FileNotFound(t *testing.T) {
	a, err := LoadAliases(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Empty(t, a.Users)
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()
	content := `# ymatch user aliases
# name=user_id

alice = qjfMBIZpQT9DDtw_BWCopQ
bob=Xqd0DzHaiyRqVH3WRG7hzg
noequalssign
=missinguser
emptyid=
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aliases"), []byte(content), 0644))

	a, err := LoadAliases(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"alice": "qjfMBIZpQT9DDtw_BWCopQ",
		"bob":   "Xqd0DzHaiyRqVH3WRG7hzg",
	}, a.Users)
}

func TestAliases_Resolve(t *testing.T) {
	a := &Aliases{Users: map[string]string{"alice": "U1"}}

	tests := []struct {
		name string
		want string
	}{
		{"alice", "U1"},
		{"U1", "U1"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Resolve(tt.name))
		})
	}

	var none *Aliases
	assert.Equal(t, "bob", none.Resolve("bob"))
}
