// Package namespace stores script variables and expands references to them
// in command arguments.
package namespace
