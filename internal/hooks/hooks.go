// Package hooks runs user-provided scripts on watch events.
//
// Scripts live in the hooks directory (config key "hooks_dir", overridable
// with STUDENTDESK_HOOKS_DIR) and are matched by event name prefix: a
// script named "change-notify.sh" runs on every change event. Event data
// is passed through STUDENTDESK_* environment variables.
package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"studentdesk/internal/config"
	"studentdesk/internal/logging"
)

// Event names passed to hook scripts and used as filename prefixes.
const (
	EventChange      = "change"
	EventUnreachable = "unreachable"
	EventReachable   = "reachable"
)

// Timeout bounds the runtime of a single hook script.
const Timeout = 10 * time.Second

// Dir returns the hooks directory. The STUDENTDESK_HOOKS_DIR environment
// variable takes precedence over the configured value.
func Dir() string {
	if dir := os.Getenv("STUDENTDESK_HOOKS_DIR"); dir != "" {
		return dir
	}
	return config.Get("hooks_dir", "")
}

// Run executes every hook script matching the event, in name order, with
// the event environment applied. A missing hooks directory is not an
// error. Script failures are logged and do not stop later scripts.
func Run(event string, env map[string]string) error {
	dir := Dir()
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("hooks: read %s: %w", dir, err)
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), event) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		scripts = append(scripts, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(scripts)

	log := logging.GetGlobal().With("component", "hooks")
	for _, script := range scripts {
		if err := runScript(script, event, env); err != nil {
			log.Warn("hook failed", "script", script, "event", event, "error", err)
		} else {
			log.Debug("hook completed", "script", script, "event", event)
		}
	}
	return nil
}

func runScript(script, event string, env map[string]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, script)
	cmd.Env = append(os.Environ(), "STUDENTDESK_EVENT="+event)
	for key, value := range env {
		cmd.Env = append(cmd.Env, "STUDENTDESK_"+key+"="+value)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
