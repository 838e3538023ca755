// Package plugins loads the manifest declaring custom task actions. A plugin
// contributes one catalog action: a matcher deciding which messages it
// applies to, and the task name its button submits to the job queue.
package plugins

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"savbot/pkg/action"
)

// manifest is the on-disk shape of the plugin declaration file.
type manifest struct {
	Actions []entry `json:"actions"`
}

type entry struct {
	Code         string   `json:"code"`
	Caption      string   `json:"caption"`
	Order        int      `json:"order"`
	Task         string   `json:"task"`
	Pattern      string   `json:"pattern,omitempty"`
	ParseLinks   bool     `json:"parse_links,omitempty"`
	AllowedHosts []string `json:"allowed_hosts,omitempty"`
	Instant      bool     `json:"instant,omitempty"`
	TimeoutSec   int      `json:"timeout_seconds,omitempty"`
}

// Load reads the manifest and returns compiled plugin action definitions in
// declaration order. A broken manifest is a boot error.
func Load(path string) ([]action.Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plugin manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parse plugin manifest: %w", err)
	}

	defs := make([]action.Definition, 0, len(m.Actions))
	for i, e := range m.Actions {
		def, err := e.definition()
		if err != nil {
			return nil, fmt.Errorf("plugin action %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (e entry) definition() (action.Definition, error) {
	var def action.Definition

	code := strings.TrimSpace(e.Code)
	if code == "" {
		return def, fmt.Errorf("missing code")
	}
	if strings.TrimSpace(e.Caption) == "" {
		return def, fmt.Errorf("action %q: missing caption", code)
	}
	if strings.TrimSpace(e.Task) == "" {
		return def, fmt.Errorf("action %q: missing task name", code)
	}
	if e.Order < action.CustomMinOrder {
		return def, fmt.Errorf("action %q: order %d is below the custom range (%d+)", code, e.Order, action.CustomMinOrder)
	}
	if e.Pattern == "" && !e.ParseLinks {
		return def, fmt.Errorf("action %q: needs a pattern or parse_links", code)
	}

	matcher := &action.Matcher{
		Pattern:      e.Pattern,
		ParseLinks:   e.ParseLinks,
		AllowedHosts: e.AllowedHosts,
	}
	if err := matcher.Compile(); err != nil {
		return def, fmt.Errorf("action %q: %w", code, err)
	}

	return action.Definition{
		Code:     code,
		Caption:  e.Caption,
		Order:    e.Order,
		Handler:  action.HandlerCustomTask,
		Timeout:  time.Duration(e.TimeoutSec) * time.Second,
		Matcher:  matcher,
		TaskName: e.Task,
		Instant:  e.Instant,
	}, nil
}
