// Package ui provides the approvers that guard removal of previous
// extraction output: a forced countdown for --force and a typed
// confirmation for interactive terminals.
package ui
