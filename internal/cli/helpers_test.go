package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate gives the test its own HOME and working directory and clears includemin's environment. It returns the working directory.
func isolate(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("end-to-end tests use /bin/sh check commands")
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOCALAPPDATA", t.TempDir())
	for _, env := range []string{envCommand, envShell, envColor, envObjC} {
		t.Setenv(env, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func runIncludemin(t *testing.T, ctx context.Context, args ...string) (code int, err error, out string, errOut string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code, err = Run(append([]string{"includemin"}, args...), &RunOptions{
		Out:     &outBuf,
		Err:     &errBuf,
		Context: ctx,
	})
	return code, err, outBuf.String(), errBuf.String()
}
