package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tieCorpus: A and B agree with T on B1 and B2; B9 is underrated by both,
// B8 overrated by A.
const tieCorpus = `{"type":"review","business_id":"B1","user_id":"T","stars":4}
{"type":"review","business_id":"B2","user_id":"T","stars":4}
{"type":"review","business_id":"B1","user_id":"A","stars":4}
{"type":"review","business_id":"B2","user_id":"A","stars":4}
{"type":"review","business_id":"B1","user_id":"B","stars":4}
{"type":"review","business_id":"B2","user_id":"B","stars":4}
{"type":"review","business_id":"B9","user_id":"A","stars":5}
{"type":"review","business_id":"B9","user_id":"B","stars":5}
{"type":"review","business_id":"B9","user_id":"X","stars":2}
{"type":"review","business_id":"B8","user_id":"A","stars":1}
{"type":"review","business_id":"B8","user_id":"X","stars":5}
`

// testEnv isolates config, aliases and run history in temp dirs.
type testEnv struct {
	configDir string
	corpus    string
}

func newTestEnv(t *testing.T, corpus string) *testEnv {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "review.json")
	require.NoError(t, os.WriteFile(path, []byte(corpus), 0644))

	return &testEnv{configDir: filepath.Join(xdg, "ymatch"), corpus: path}
}

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	var stdout, stderr bytes.Buffer
	RootCmd.SetOut(&stdout)
	RootCmd.SetErr(&stderr)
	RootCmd.SetIn(strings.NewReader(""))
	RootCmd.SetArgs(args)

	if ctx == nil {
		ctx = context.Background()
	}
	err := RootCmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// run executes against env's corpus quietly.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := execute(t, nil, append([]string{"--quiet", "--input", e.corpus}, args...)...)
	return out, err
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "ymatch", RootCmd.Use)
	assert.NotEmpty(t, RootCmd.Short)
	assert.NotEmpty(t, RootCmd.Long)

	for _, name := range []string{"config", "input", "decompressor", "db", "log-level", "quiet"} {
		f := RootCmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.NotEmpty(t, f.Usage, name)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range []string{"match", "friends", "businesses", "explain", "stats", "check", "history", "watch"} {
		assert.True(t, found[name], "command %s not registered", name)
	}
}

func TestSetup_BadLogLevel(t *testing.T) {
	env := newTestEnv(t, tieCorpus)
	_, err := env.run(t, "--log-level", "loud", "check")
	assert.Error(t, err)
}

func TestSetup_ConfigFile(t *testing.T) {
	env := newTestEnv(t, tieCorpus)
	cfgPath := filepath.Join(t.TempDir(), "ymatch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input:\n  path: "+env.corpus+"\noutput:\n  format: csv\n  sort: id\n"), 0644))

	out, _, err := execute(t, nil, "--quiet", "--config", cfgPath, "businesses", "T")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "T,B8,"))
}
