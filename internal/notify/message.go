package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// FormatLead renders a lead as a chat message listing every field, keys sorted.
func FormatLead(site string, data map[string]any) string {
	var b strings.Builder
	b.WriteString("New lead")
	if site != "" {
		b.WriteString(" from ")
		b.WriteString(site)
	}
	b.WriteString("\n")

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, "\n%s: %s", k, fieldValue(data[k]))
	}
	return b.String()
}

func fieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}
