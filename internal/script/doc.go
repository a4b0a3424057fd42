// Package script runs twill scripts.
//
// An Interpreter reads a script line by line, parses each line into a
// command and arguments, expands variable references through the namespace
// and dispatches the command through a Registry. Every script runs in its
// own Frame with a fresh local scope and its own cleanup list; nested
// scripts started with runfile get a nested frame.
//
// By default the first failing command aborts the frame. With NeverFail set
// failures are logged, the first one is kept on the browser and execution
// continues. Argument expansion errors always abort.
package script
