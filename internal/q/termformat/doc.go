// Package termformat formats single lines of text for a terminal: SGR styling, escaping of untrusted text, and padding or truncation by display width.
package termformat
