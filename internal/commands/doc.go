// Package commands implements the built-in script commands: navigation,
// page checks, form filling and submission, listings, session settings and
// script control. Register installs them into a script.Registry.
package commands
