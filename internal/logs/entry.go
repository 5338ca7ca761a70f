package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"vibeshuffle/internal/logging"
)

// Entry is one decoded JSON log line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Fields    map[string]any
}

// ParseEntry decodes a JSON log line. Lines that are not JSON objects
// report false.
func ParseEntry(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{Fields: map[string]any{}}
	for key, value := range raw {
		switch key {
		case "ts":
			if s, ok := value.(string); ok {
				entry.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case "level":
			entry.Level = fmt.Sprint(value)
		case logging.FieldComponent:
			entry.Component = fmt.Sprint(value)
		case "msg":
			entry.Message = fmt.Sprint(value)
		default:
			entry.Fields[key] = value
		}
	}
	return entry, true
}

// Format renders the entry on one line in local time.
//
//	15:04:05 WARN player: playback failed track=Alpha impact="..."
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(e.Level))
	b.WriteByte(' ')
	if e.Component != "" {
		b.WriteString(e.Component)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := fmt.Sprint(e.Fields[k])
		if strings.ContainsAny(value, " \t") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&b, " %s=%s", k, value)
	}
	return b.String()
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Filter narrows entries by minimum level, component and session id. Empty
// fields match everything.
type Filter struct {
	Level     string
	Component string
	SessionID string
}

// Validate rejects unknown level names.
func (f Filter) Validate() error {
	if f.Level == "" {
		return nil
	}
	if _, ok := levelRank[strings.ToLower(f.Level)]; !ok {
		return fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", f.Level)
	}
	return nil
}

// Match reports whether the entry passes the filter.
func (f Filter) Match(e Entry) bool {
	if f.Level != "" {
		want := levelRank[strings.ToLower(f.Level)]
		got, ok := levelRank[strings.ToLower(e.Level)]
		if ok && got < want {
			return false
		}
	}
	if f.Component != "" && !strings.EqualFold(f.Component, e.Component) {
		return false
	}
	if f.SessionID != "" && fmt.Sprint(e.Fields[logging.FieldSessionID]) != f.SessionID {
		return false
	}
	return true
}

// Render applies the filter to raw lines. Raw non-JSON lines pass through
// only when no filter is set.
func Render(lines []string, filter Filter, raw bool) []string {
	out := make([]string, 0, len(lines))
	empty := filter == Filter{}
	for _, line := range lines {
		entry, ok := ParseEntry(line)
		if !ok {
			if empty {
				out = append(out, line)
			}
			continue
		}
		if !filter.Match(entry) {
			continue
		}
		if raw {
			out = append(out, line)
		} else {
			out = append(out, entry.Format())
		}
	}
	return out
}
