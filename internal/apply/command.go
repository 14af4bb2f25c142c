package apply

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"

	"github.com/droidheat/amoled/internal/op"
)

const (
	pathPlaceholder = "{path}"
	commandTimeout  = 30 * time.Second
)

const macScript = `tell application "System Events"
	tell every desktop
		set picture to "{path}"
	end tell
end tell`

// DefaultCommand returns the argv used when no command is configured.
func DefaultCommand() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"osascript", "-e", macScript}
	default:
		return []string{"feh", "--bg-fill", pathPlaceholder}
	}
}

// ParseCommand splits a configured command template into argv using shell
// quoting rules, so quoted arguments and paths with spaces survive. An empty
// template yields DefaultCommand.
func ParseCommand(template string) ([]string, error) {
	fields, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("parse wallpaper command %q: %w", template, err)
	}
	if len(fields) == 0 {
		return DefaultCommand(), nil
	}
	return fields, nil
}

// appleScriptString escapes s for use inside an AppleScript string literal.
func appleScriptString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CommandService changes the wallpaper by running an external command in the
// background and announcing the result as a ChangeEvent.
type CommandService struct {
	argv     []string
	run      runFunc
	lookPath func(string) (string, error)

	wg        sync.WaitGroup
	listeners op.Listeners[ChangeEvent]
}

var _ Service = (*CommandService)(nil)

// NewCommandService returns a service running argv, with every "{path}"
// replaced by the wallpaper path. An empty argv uses DefaultCommand.
func NewCommandService(argv []string) *CommandService {
	if len(argv) == 0 {
		argv = DefaultCommand()
	}
	return &CommandService{argv: argv, run: runCommand, lookPath: exec.LookPath}
}

func (s *CommandService) Subscribe(fn func(ChangeEvent)) func() {
	return s.listeners.Add(fn)
}

func (s *CommandService) SetWallpaper(_ context.Context, token Token, path string) (Outcome, error) {
	info, err := os.Stat(path)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("wallpaper file: %w", err)
	}
	if info.IsDir() {
		return OutcomeFailed, fmt.Errorf("wallpaper file: %s is a directory", path)
	}
	if _, err := s.lookPath(s.argv[0]); err != nil {
		return OutcomeFailed, fmt.Errorf("wallpaper command: %w", err)
	}

	value := path
	if filepath.Base(s.argv[0]) == "osascript" {
		value = appleScriptString(path)
	}
	args := make([]string, len(s.argv)-1)
	for i, a := range s.argv[1:] {
		args[i] = strings.ReplaceAll(a, pathPlaceholder, value)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		out, err := s.run(ctx, s.argv[0], args...)
		if err != nil {
			if msg := strings.TrimSpace(string(out)); msg != "" {
				err = fmt.Errorf("%w (output: %s)", err, msg)
			}
			log.Printf("apply: %s failed: %v", s.argv[0], err)
		}
		s.listeners.Emit(ChangeEvent{Token: token, Success: err == nil, Path: path, Err: err})
	}()
	return OutcomePending, nil
}

// Delete removes the wallpaper file. It reports false when the file was
// already gone.
func (s *CommandService) Delete(_ context.Context, path string) (bool, error) {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("delete wallpaper: %w", err)
	}
	return true, nil
}

// Wait blocks until running commands have reported.
func (s *CommandService) Wait() {
	s.wg.Wait()
}
