// Package parser splits script lines into a command name and its arguments.
//
// A line is either a comment starting with '#' or a command identifier
// followed by whitespace-separated arguments. Arguments are single- or
// double-quoted strings or unquoted runs without whitespace, '#' or quotes.
// A '#' outside quotes starts a trailing comment.
package parser
