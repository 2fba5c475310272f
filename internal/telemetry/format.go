package telemetry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format renders one JSONL line for humans. Lines that are not events are
// returned with a "???" prefix.
func Format(line string) string {
	var evt Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil || evt.Kind == "" {
		return "??? " + line
	}

	parts := []string{fmt.Sprintf("[%s]", evt.Timestamp.Local().Format(time.DateTime)), evt.Kind}
	if evt.RunID != "" {
		parts = append(parts, "run="+evt.RunID)
	}
	if evt.Dataset != "" {
		parts = append(parts, "dataset="+evt.Dataset)
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, " ")
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
