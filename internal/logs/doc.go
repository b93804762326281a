// Package logs reads the structured automan log file for `automan logs`.
//
// Last returns the trailing lines with bounded memory, Follow polls for new
// lines until its context ends, and Filter narrows the JSON entries to one
// render job or a minimum level.
package logs
