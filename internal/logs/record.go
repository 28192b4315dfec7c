package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"dalo/internal/logging"
)

// Record is one decoded JSON log line.
type Record struct {
	Time      string
	Level     string
	Message   string
	Component string
	RunID     string
	Stage     string
	Fields    map[string]any
}

var reservedKeys = map[string]struct{}{
	logging.KeyTime: {}, logging.KeyLevel: {}, logging.KeyMessage: {}, logging.KeySource: {},
	logging.FieldComponent: {}, logging.FieldRunID: {}, logging.FieldStage: {},
}

// ParseRecord decodes a line written by the JSON log handler. Lines that are
// not JSON objects report false.
func ParseRecord(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Record{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{}, false
	}
	rec := Record{
		Time:      stringField(raw, logging.KeyTime),
		Level:     stringField(raw, logging.KeyLevel),
		Message:   stringField(raw, logging.KeyMessage),
		Component: stringField(raw, logging.FieldComponent),
		RunID:     stringField(raw, logging.FieldRunID),
		Stage:     stringField(raw, logging.FieldStage),
		Fields:    make(map[string]any),
	}
	for key, value := range raw {
		if _, reserved := reservedKeys[key]; !reserved {
			rec.Fields[key] = value
		}
	}
	return rec, true
}

// MatchRun keeps records whose run id starts with prefix. An empty prefix
// matches everything, including non-JSON lines.
func MatchRun(prefix string) func(string) bool {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	return func(line string) bool {
		rec, ok := ParseRecord(line)
		return ok && rec.RunID != "" && strings.HasPrefix(rec.RunID, prefix)
	}
}

// Summary renders the record on one line: time, level, component, stage,
// message, then the remaining fields sorted by key.
func (r Record) Summary() string {
	var b strings.Builder
	b.WriteString(r.Time)
	b.WriteString(" ")
	b.WriteString(strings.ToUpper(r.Level))
	if r.Component != "" {
		fmt.Fprintf(&b, " [%s]", r.Component)
	}
	if r.Stage != "" {
		fmt.Fprintf(&b, " (%s)", r.Stage)
	}
	b.WriteString(" ")
	b.WriteString(r.Message)

	keys := make([]string, 0, len(r.Fields))
	for key := range r.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, r.Fields[key])
	}
	return b.String()
}

func stringField(raw map[string]any, key string) string {
	if value, ok := raw[key].(string); ok {
		return value
	}
	return ""
}
