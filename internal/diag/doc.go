// Package diag is the best-effort diagnostic sink.
//
// Execution failures (a download that did not finish, a wallpaper change the
// platform rejected) are handed to a Sink as Reports. The Recorder writes
// them to the errorlogs table without ever blocking the caller, and Upload
// ships stored logs to a collection endpoint when the user has allowed it.
package diag
