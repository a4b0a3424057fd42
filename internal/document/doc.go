// Package document models a fetched page: decoded text, title, links and the
// forms recovered from possibly malformed markup, together with the rules for
// resolving and setting form fields.
package document
