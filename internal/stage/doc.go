// Package stage defines the closed set of pipeline stages, the validated
// ordered subsets callers may request, and the external operation
// abstraction each stage delegates to.
//
// An Operation is either an in-process function (Func) or an out-of-process
// command (Command). The runner treats both identically: it hands over an
// input path, a destination path, and a writer for diagnostic output.
package stage
