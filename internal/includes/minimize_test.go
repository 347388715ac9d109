package includes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeIncludes = "#include <a.h>\n#include <b.h>\n#include \"c.h\"\nint main(void) { return 0; }\n"

type recordingObserver struct {
	events []string
	done   []Result
}

func (o *recordingObserver) Found(path string, ds []Directive) {
	o.events = append(o.events, fmt.Sprintf("found %d", len(ds)))
}
func (o *recordingObserver) Attempt(path string, d Directive) {
	o.events = append(o.events, fmt.Sprintf("attempt %d", d.Line))
}
func (o *recordingObserver) Removable(path string, d Directive) {
	o.events = append(o.events, fmt.Sprintf("removable %d", d.Line))
}
func (o *recordingObserver) Required(path string, d Directive) {
	o.events = append(o.events, fmt.Sprintf("required %d", d.Line))
}
func (o *recordingObserver) Done(res Result) {
	o.events = append(o.events, "done")
	o.done = append(o.done, res)
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.c")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readString(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

// needs returns a checker that passes only while the file at path still contains every header in headers.
func needs(path string, headers ...string) CheckerFunc {
	return func(ctx context.Context) (bool, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return false, err
		}
		for _, h := range headers {
			if !strings.Contains(string(b), h) {
				return false, nil
			}
		}
		return true, nil
	}
}

func always(ok bool) CheckerFunc {
	return func(ctx context.Context) (bool, error) { return ok, nil }
}

func TestMinimize_AllRemovable(t *testing.T) {
	path := writeSource(t, threeIncludes)
	obs := &recordingObserver{}

	res, err := Minimize(context.Background(), path, Options{Checker: always(true), Observer: obs})
	require.NoError(t, err)

	assert.Equal(t, "int main(void) { return 0; }\n", readString(t, path))
	assert.Equal(t, path+BackupSuffix, res.BackupPath)
	assert.Equal(t, threeIncludes, readString(t, res.BackupPath))
	assert.Len(t, res.Directives, 3)
	assert.Len(t, res.Removed, 3)
	assert.Empty(t, res.Kept)
	assert.True(t, res.Changed())

	assert.Equal(t, []string{
		"found 3",
		"attempt 1", "removable 1",
		"attempt 2", "removable 2",
		"attempt 3", "removable 3",
		"done",
	}, obs.events)
}

func TestMinimize_MiddleRequired(t *testing.T) {
	path := writeSource(t, threeIncludes)
	obs := &recordingObserver{}

	res, err := Minimize(context.Background(), path, Options{Checker: needs(path, "<b.h>"), Observer: obs})
	require.NoError(t, err)

	assert.Equal(t, "#include <b.h>\nint main(void) { return 0; }\n", readString(t, path))
	require.Len(t, res.Kept, 1)
	assert.Equal(t, 2, res.Kept[0].Line)
	require.Len(t, res.Removed, 2)
	assert.Equal(t, 1, res.Removed[0].Line)
	assert.Equal(t, 3, res.Removed[1].Line)
	assert.FileExists(t, path+BackupSuffix)

	assert.Equal(t, []string{
		"found 3",
		"attempt 1", "removable 1",
		"attempt 2", "required 2",
		"attempt 3", "removable 3",
		"done",
	}, obs.events)
}

func TestMinimize_NoDirectives(t *testing.T) {
	content := "int x;\r\nint y;"
	path := writeSource(t, content)
	calls := 0
	checker := CheckerFunc(func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	obs := &recordingObserver{}

	res, err := Minimize(context.Background(), path, Options{Checker: checker, Observer: obs})
	require.NoError(t, err)

	assert.Equal(t, 0, calls)
	assert.Empty(t, res.Directives)
	assert.Empty(t, res.BackupPath)
	assert.NoFileExists(t, path+BackupSuffix)
	assert.Equal(t, content, readString(t, path))
	assert.Equal(t, []string{"found 0", "done"}, obs.events)
}

func TestMinimize_AllRequiredRestoresOriginal(t *testing.T) {
	content := "// header\r\n#include <a.h>\r\n  #include \"b.h\"  \r\nint x;"
	path := writeSource(t, content)

	res, err := Minimize(context.Background(), path, Options{Checker: always(false)})
	require.NoError(t, err)

	assert.Equal(t, content, readString(t, path))
	assert.NoFileExists(t, path+BackupSuffix)
	assert.Empty(t, res.BackupPath)
	assert.Len(t, res.Kept, 2)
	assert.Empty(t, res.Removed)
	assert.False(t, res.Changed())
}

func TestMinimize_LastRequiredIsRestoredOnDisk(t *testing.T) {
	path := writeSource(t, threeIncludes)

	res, err := Minimize(context.Background(), path, Options{Checker: needs(path, `"c.h"`)})
	require.NoError(t, err)

	assert.Equal(t, "#include \"c.h\"\nint main(void) { return 0; }\n", readString(t, path))
	assert.Len(t, res.Removed, 2)
}

func TestMinimize_TrialsAlwaysStartFromBackup(t *testing.T) {
	content := "#include <a.h>\nx\n#include <b.h>\ny\n#include <c.h>\n#include <d.h>\n"
	path := writeSource(t, content)
	backup := path + BackupSuffix
	original := strings.SplitAfter(content, "\n")

	removed := NewLineSet()
	var trial int
	lines := []int{1, 3, 5, 6}
	checker := CheckerFunc(func(ctx context.Context) (bool, error) {
		assert.Equal(t, content, readString(t, backup), "backup must never change")

		current := lines[trial]
		trial++
		var want strings.Builder
		for i, l := range original {
			if n := i + 1; n != current && !removed.Has(n) {
				want.WriteString(l)
			}
		}
		assert.Equal(t, want.String(), readString(t, path))

		// Lines 3 and 6 are required.
		ok := current != 3 && current != 6
		if ok {
			removed.Add(current)
		}
		return ok, nil
	})

	res, err := Minimize(context.Background(), path, Options{Checker: checker})
	require.NoError(t, err)
	assert.Equal(t, 4, trial)
	assert.Equal(t, "x\n#include <b.h>\ny\n#include <d.h>\n", readString(t, path))
	assert.Len(t, res.Removed, 2)
}

func TestMinimize_GreedyDoesNotBacktrack(t *testing.T) {
	// a.h and b.h are interchangeable: the build needs at least one of them. Removing a.h first succeeds, so b.h becomes required, even though
	// keeping a.h and dropping b.h would be just as small.
	path := writeSource(t, "#include <a.h>\n#include <b.h>\n")
	checker := CheckerFunc(func(ctx context.Context) (bool, error) {
		s := readString(t, path)
		return strings.Contains(s, "<a.h>") || strings.Contains(s, "<b.h>"), nil
	})

	res, err := Minimize(context.Background(), path, Options{Checker: checker})
	require.NoError(t, err)
	assert.Equal(t, "#include <b.h>\n", readString(t, path))
	require.Len(t, res.Kept, 1)
	assert.Equal(t, "<b.h>", res.Kept[0].Header)
}

func TestMinimize_Idempotent(t *testing.T) {
	path := writeSource(t, threeIncludes)
	checker := needs(path, "<b.h>")

	_, err := Minimize(context.Background(), path, Options{Checker: checker})
	require.NoError(t, err)
	first := readString(t, path)

	res, err := Minimize(context.Background(), path, Options{Checker: checker})
	require.NoError(t, err)
	assert.Empty(t, res.Removed)
	assert.Len(t, res.Kept, 1)
	assert.Equal(t, first, readString(t, path))
	assert.NoFileExists(t, path+BackupSuffix)
}

func TestMinimize_EachDirectiveTriedOnce(t *testing.T) {
	path := writeSource(t, threeIncludes)
	calls := 0
	checker := CheckerFunc(func(ctx context.Context) (bool, error) {
		calls++
		return calls%2 == 0, nil
	})

	_, err := Minimize(context.Background(), path, Options{Checker: checker})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestMinimize_ObjCImports(t *testing.T) {
	content := "#import <Foundation/Foundation.h>\n#include \"c.h\"\n@implementation X\n@end\n"
	path := writeSource(t, content)

	res, err := Minimize(context.Background(), path, Options{Checker: always(true), Dialect: DialectObjC})
	require.NoError(t, err)
	assert.Len(t, res.Removed, 2)
	assert.Equal(t, "@implementation X\n@end\n", readString(t, path))

	path = writeSource(t, content)
	res, err = Minimize(context.Background(), path, Options{Checker: always(true)})
	require.NoError(t, err)
	require.Len(t, res.Removed, 1)
	assert.Equal(t, `"c.h"`, res.Removed[0].Header)
}

func TestMinimize_CheckerErrorAborts(t *testing.T) {
	path := writeSource(t, threeIncludes)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	checker := CheckerFunc(func(ctx context.Context) (bool, error) {
		calls++
		if calls == 2 {
			cancel()
			return false, ctx.Err()
		}
		return true, nil
	})
	obs := &recordingObserver{}

	res, err := Minimize(ctx, path, Options{Checker: checker, Observer: obs})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
	assert.Equal(t, path+BackupSuffix, res.BackupPath)
	assert.FileExists(t, res.BackupPath)
	assert.Len(t, res.Removed, 1)
	assert.Empty(t, obs.done)
}

func TestMinimize_CanceledContextStopsBeforeFirstTrial(t *testing.T) {
	path := writeSource(t, threeIncludes)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Minimize(ctx, path, Options{Checker: always(true)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, threeIncludes, readString(t, path))
}

func TestMinimize_Errors(t *testing.T) {
	_, err := Minimize(context.Background(), "x.c", Options{})
	require.ErrorContains(t, err, "Checker is required")

	_, err = Minimize(context.Background(), filepath.Join(t.TempDir(), "missing.c"), Options{Checker: always(true)})
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "scan ")
}
