package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Tail is the end of a log file.
type Tail struct {
	Lines []string
	// Total is the number of lines in the file.
	Total int
}

// Truncated reports whether earlier lines were left out.
func (t Tail) Truncated() bool {
	return t.Total > len(t.Lines)
}

// Read returns at most maxLines from the end of the file at path; maxLines
// <= 0 returns every line. A missing file is an empty Tail.
func Read(path string, maxLines int) (Tail, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Tail{}, nil
		}
		return Tail{}, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return Tail{}, fmt.Errorf("read log: %w", err)
		}
		return Tail{Lines: lines, Total: len(lines)}, nil
	}

	ring := make([]string, maxLines)
	total := 0
	for scanner.Scan() {
		ring[total%maxLines] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return Tail{}, fmt.Errorf("read log: %w", err)
	}

	if total <= maxLines {
		return Tail{Lines: ring[:total:total], Total: total}, nil
	}
	start := total % maxLines
	lines := make([]string, 0, maxLines)
	lines = append(lines, ring[start:]...)
	lines = append(lines, ring[:start]...)
	return Tail{Lines: lines, Total: total}, nil
}

// Level is the severity a log line reads as.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

var (
	errorWords = []string{"failed", "error", "panic"}
	warnWords  = []string{"pruning", "skipping", "dropped", "retry", "warning"}
)

// Classify guesses the Level of line from its message.
func Classify(line string) Level {
	msg := strings.ToLower(message(line))
	for _, w := range errorWords {
		if strings.Contains(msg, w) {
			return LevelError
		}
	}
	for _, w := range warnWords {
		if strings.Contains(msg, w) {
			return LevelWarn
		}
	}
	return LevelInfo
}

// Split separates the log timestamp from the message. Lines without the
// standard prefix return an empty timestamp.
func Split(line string) (stamp, msg string) {
	const layoutLen = len("2006/01/02 15:04:05")
	if len(line) > layoutLen && line[4] == '/' && line[7] == '/' && line[layoutLen] == ' ' {
		return line[:layoutLen], line[layoutLen+1:]
	}
	return "", line
}

func message(line string) string {
	_, msg := Split(line)
	return msg
}
