// Package which resolves logical command names to executable files.
//
// A Which searches its configured directories first and then the entries of
// the PATH environment variable, the same way a shell does. Lookups are never
// cached: every Resolve call consults the file system again, so a build
// script that installs a tool mid-run can invoke it immediately.
package which
