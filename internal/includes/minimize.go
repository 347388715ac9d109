package includes

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// BackupSuffix is appended to a file's path to name its backup.
const BackupSuffix = ".bak"

// Checker decides whether the project is still good after a trial rewrite.
//
// Check reports false for any failed check. It returns an error only when the run must stop (ex: ctx was canceled).
type Checker interface {
	Check(ctx context.Context) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) (bool, error)

func (f CheckerFunc) Check(ctx context.Context) (bool, error) { return f(ctx) }

// Observer is told about the progress of Minimize. Every method is called synchronously from Minimize.
type Observer interface {
	// Found is called once after scanning, even if no directives were found.
	Found(path string, directives []Directive)

	// Attempt is called before the trial that removes d.
	Attempt(path string, d Directive)

	// Removable is called when the check passed without d.
	Removable(path string, d Directive)

	// Required is called when the check failed without d. d is restored.
	Required(path string, d Directive)

	// Done is called when the file reached its final state. It is not called when Minimize returns an error.
	Done(res Result)
}

// Options configure Minimize.
type Options struct {
	Checker  Checker  // required
	Dialect  Dialect  // directives to look for; defaults to DialectC
	Observer Observer // optional
}

// Result describes what Minimize did to one file.
type Result struct {
	Path string

	// BackupPath is the backup left next to Path. It is empty when no backup exists: no directives were found, or nothing was removed and the backup was
	// moved back over Path.
	BackupPath string

	Directives []Directive // every directive found, in line order
	Removed    []Directive // directives whose removal passed the check
	Kept       []Directive // directives the check required
}

// Changed reports whether any directive was removed.
func (r Result) Changed() bool {
	return len(r.Removed) > 0
}

// Minimize greedily removes the include directives of the file at path that opts.Checker does not need.
//
// If the file has no directives it is left untouched and no backup is made. Otherwise the file is copied to path+BackupSuffix and each directive is tried
// once, in line order. When at least one directive was removed the backup stays on disk; when none was, the backup is renamed back over path, restoring it
// byte for byte.
//
// I/O errors and errors from the Checker abort immediately; the file and its backup are then left as they are. The returned Result reflects the work done
// up to that point.
func Minimize(ctx context.Context, path string, opts Options) (Result, error) {
	if opts.Checker == nil {
		return Result{}, errors.New("includes: Options.Checker is required")
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	res := Result{Path: path}

	directives, err := ReadDirectives(path, opts.Dialect)
	if err != nil {
		return res, fmt.Errorf("scan %s: %w", path, err)
	}
	res.Directives = directives
	obs.Found(path, directives)

	if len(directives) == 0 {
		obs.Done(res)
		return res, nil
	}

	backup := path + BackupSuffix
	if err := copyFile(path, backup); err != nil {
		return res, fmt.Errorf("back up %s: %w", path, err)
	}
	res.BackupPath = backup

	removal := LineSet{}
	for _, d := range directives {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		obs.Attempt(path, d)
		removal.Add(d.Line)
		if err := Rewrite(backup, path, removal); err != nil {
			return res, err
		}

		ok, err := opts.Checker.Check(ctx)
		if err != nil {
			return res, err
		}
		if ok {
			res.Removed = append(res.Removed, d)
			obs.Removable(path, d)
		} else {
			removal.Remove(d.Line)
			res.Kept = append(res.Kept, d)
			obs.Required(path, d)
		}
	}

	if len(removal) > 0 {
		// The last trial may have been retracted, so the file on disk can still be missing a required line.
		if err := Rewrite(backup, path, removal); err != nil {
			return res, err
		}
	} else {
		if err := os.Rename(backup, path); err != nil {
			return res, fmt.Errorf("restore %s: %w", path, err)
		}
		res.BackupPath = ""
	}

	obs.Done(res)
	return res, nil
}

type nopObserver struct{}

func (nopObserver) Found(string, []Directive)   {}
func (nopObserver) Attempt(string, Directive)   {}
func (nopObserver) Removable(string, Directive) {}
func (nopObserver) Required(string, Directive)  {}
func (nopObserver) Done(Result)                 {}
