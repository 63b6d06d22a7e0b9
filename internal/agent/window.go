package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/process"
)

const commandTimeout = 2 * time.Second

var ErrNoActiveWindow = errors.New("no active window")

type Window struct {
	Title   string
	PID     int32
	Process string
}

// Label is the observation text sent to the server.
func (w Window) Label(includeProcess bool) string {
	if includeProcess && w.Process != "" {
		if w.Title == "" {
			return w.Process
		}
		return w.Process + " - " + w.Title
	}
	return w.Title
}

type WindowSource interface {
	ActiveWindow(ctx context.Context) (Window, error)
}

// CommandRunner runs an external command and returns its trimmed stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// XdotoolSource reads the focused X11 window through xdotool.
type XdotoolSource struct {
	run         CommandRunner
	processName func(ctx context.Context, pid int32) (string, error)
}

func NewXdotoolSource() *XdotoolSource {
	return &XdotoolSource{run: execRunner, processName: gopsutilProcessName}
}

func (s *XdotoolSource) ActiveWindow(ctx context.Context) (Window, error) {
	title, err := s.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return Window{}, fmt.Errorf("xdotool getwindowname: %w", err)
	}
	if title == "" {
		return Window{}, ErrNoActiveWindow
	}

	w := Window{Title: title}

	rawPID, err := s.run(ctx, "xdotool", "getactivewindow", "getwindowpid")
	if err != nil {
		return w, nil
	}
	pid, err := strconv.ParseInt(rawPID, 10, 32)
	if err != nil {
		return w, nil
	}
	w.PID = int32(pid)

	if name, err := s.processName(ctx, w.PID); err == nil {
		w.Process = name
	}
	return w, nil
}

func gopsutilProcessName(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// HostSource describes the machine when no window system is reachable.
type HostSource struct{}

func (HostSource) ActiveWindow(ctx context.Context) (Window, error) {
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Window{Title: runtime.GOOS + " System - " + user}, nil
	}

	if display := os.Getenv("DISPLAY"); display != "" && info.OS == "linux" {
		return Window{Title: "Linux Desktop - " + display}, nil
	}
	return Window{Title: fmt.Sprintf("%s Terminal - %s@%s", titleCase(info.OS), user, info.Hostname)}, nil
}

// FallbackSource tries each source in order.
type FallbackSource []WindowSource

func (f FallbackSource) ActiveWindow(ctx context.Context) (Window, error) {
	var errs []error
	for _, s := range f {
		w, err := s.ActiveWindow(ctx)
		if err == nil {
			return w, nil
		}
		errs = append(errs, err)
	}
	return Window{}, errors.Join(errs...)
}

// DefaultWindowSource picks xdotool on linux when it is installed.
func DefaultWindowSource() WindowSource {
	if runtime.GOOS == "linux" {
		if _, err := exec.LookPath("xdotool"); err == nil {
			return FallbackSource{NewXdotoolSource(), HostSource{}}
		}
	}
	return HostSource{}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
