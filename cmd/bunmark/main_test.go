package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/bunmark"
)

// run executes the command line args against a fresh command tree with no
// config file in reach.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BUNMARK_VAULT_PATH", "")
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "bunmark v"+bunmark.Version()+"\n", out)
}

func TestLs(t *testing.T) {
	dir := writeVault(t, map[string]string{
		"b.md":            "",
		"notes/a.md":      "",
		"image.png":       "",
		".hidden/x.md":    "",
		"notes/.draft.md": "",
	})

	out, err := run(t, "", "ls", dir)
	require.NoError(t, err)
	require.Equal(t, "notes/a.md\nb.md\n", out)

	out, err = run(t, "", "ls", "--folders", dir)
	require.NoError(t, err)
	require.Equal(t, "notes/\nnotes/a.md\nb.md\n", out)
}

func TestLs_Query(t *testing.T) {
	dir := writeVault(t, map[string]string{"alpha.md": "", "beta.md": ""})

	out, err := run(t, "", "ls", dir, "bet")
	require.NoError(t, err)
	require.Equal(t, "beta.md\n", out)
}

func TestLs_NoVault(t *testing.T) {
	_, err := run(t, "", "ls")
	require.ErrorContains(t, err, "Vault not configured")
}

func TestHost_ServesStdin(t *testing.T) {
	dir := writeVault(t, map[string]string{"a.md": "hi"})

	out, err := run(t, `{"command":"loadFile","fileName":"a.md"}`+"\n", "host", dir)
	require.NoError(t, err)
	require.Equal(t,
		`{"command":"fileLoaded","fileName":"a.md","filePath":"`+filepath.Join(dir, "a.md")+`","content":"hi"}`+"\n",
		out)
}

func TestBadLogLevel(t *testing.T) {
	_, err := run(t, "", "--log-level", "loud", "ls", t.TempDir())
	require.Error(t, err)
}
