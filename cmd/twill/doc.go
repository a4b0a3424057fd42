// Command twill runs web-browsing scripts.
//
// Usage:
//
//	twill [flags] <script|dir|glob|->...
//
// Every script runs in a fresh browser session. A failing command stops its
// script unless --never-fail is given; failures are listed at the end and
// make the exit status non-zero. A script ending in "exit N" exits with N.
//
// Configuration comes from TWILL_* environment variables, optionally
// overlaid with a YAML or TOML file given with --config.
package main
