// Package logtail reads the end of the application log for the Logs view.
//
// The log file is written by the standard log package while the terminal
// UI owns the screen, so every line starts with a "2006/01/02 15:04:05"
// timestamp followed by a "component: message" body. Read keeps only the
// last lines in a ring buffer, so memory stays bounded however large the
// file grows. Classify assigns each line a Level the view colours by.
//
//	tail, err := logtail.Read(cfg.LogPath, 500)
//	for _, line := range tail.Lines {
//		switch logtail.Classify(line) { ... }
//	}
package logtail
