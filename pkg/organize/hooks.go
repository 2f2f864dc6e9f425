package organize

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// defaultHookTimeout bounds a single post action.
const defaultHookTimeout = 30 * time.Second

// HookRunner executes a rule's post action after a successful
// operation.
type HookRunner interface {
	Run(ctx context.Context, action, source, dest string) error
}

// ShellHook runs post actions through the system shell, substituting
// {file}, {dest}, {name}, {ext} and {dir} placeholders first.
type ShellHook struct {
	timeout time.Duration
}

// NewShellHook creates a hook runner with the default timeout.
func NewShellHook() *ShellHook {
	return &ShellHook{timeout: defaultHookTimeout}
}

// Run expands and executes one action.
func (h *ShellHook) Run(ctx context.Context, action, source, dest string) error {
	expanded := expandHookPlaceholders(action, source, dest)

	cctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(cctx, "cmd", "/C", expanded)
	} else {
		cmd = exec.CommandContext(cctx, "sh", "-c", expanded)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail != "" {
			return fmt.Errorf("failed to run post action: %w (%s)", err, detail)
		}
		return fmt.Errorf("failed to run post action: %w", err)
	}
	return nil
}

// expandHookPlaceholders fills the action template. Name and extension
// come from the source file, the directory from the destination.
func expandHookPlaceholders(action, source, dest string) string {
	base := filepath.Base(source)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return strings.NewReplacer(
		"{file}", source,
		"{dest}", dest,
		"{name}", name,
		"{ext}", ext,
		"{dir}", filepath.Dir(dest),
	).Replace(action)
}
