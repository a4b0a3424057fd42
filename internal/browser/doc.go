// Package browser implements the stateful session driven by scripts:
// navigation with history, basic auth and meta refresh, form selection and
// submission, headers, options and cookies.
package browser
