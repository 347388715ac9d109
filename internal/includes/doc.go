// Package includes minimizes the preprocessor include directives of a source file.
//
// Minimize tries to remove each directive in turn, in file order. After every tentative removal the file is rewritten from a backup copy (the file's path
// plus BackupSuffix) with all removed lines left out, and a Checker decides whether the removal stays. The backup is never modified, so a failed trial
// never leaks into the next one: at any moment the file equals the backup minus exactly the lines currently considered removed.
//
// The search is greedy. Each directive is tried once; a directive that could only go together with a later one is kept.
package includes
