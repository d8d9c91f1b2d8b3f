package adapters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"jobscout/internal/logging/types"
)

const textTimestamp = "2006-01-02T15:04:05.000Z07:00"

// formatEntry renders an entry as a single line in the requested format.
// Anything other than "text" is treated as json.
func formatEntry(entry *types.LogEntry, format string, colorized bool) (string, error) {
	if strings.EqualFold(format, "text") {
		return formatText(entry, colorized), nil
	}
	return formatJSON(entry)
}

func formatJSON(entry *types.LogEntry) (string, error) {
	logData := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		logData[k] = v
	}
	logData["level"] = entry.Level.String()
	logData["message"] = entry.Message
	logData["time"] = entry.Timestamp.Format(time.RFC3339)

	data, err := json.Marshal(logData)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatText(entry *types.LogEntry, colorized bool) string {
	level := strings.ToUpper(entry.Level.String())
	if colorized {
		level = colorizeLevel(level)
	}

	output := fmt.Sprintf("%s [%s] %s", entry.Timestamp.Format(textTimestamp), level, entry.Message)
	if len(entry.Fields) == 0 {
		return output
	}

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
	}
	return output + " " + strings.Join(fields, " ")
}

// colorizeLevel adds ANSI color codes to log levels
func colorizeLevel(level string) string {
	const (
		red    = "\033[31m"
		yellow = "\033[33m"
		blue   = "\033[34m"
		gray   = "\033[90m"
		reset  = "\033[0m"
	)

	switch level {
	case "DEBUG":
		return gray + level + reset
	case "INFO":
		return blue + level + reset
	case "WARN":
		return yellow + level + reset
	case "ERROR", "FATAL":
		return red + level + reset
	default:
		return level
	}
}
