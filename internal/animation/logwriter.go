package animation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// LogWriter is a zerolog output that records each JSON line as a LogEntry on
// a Driver. The "component" field becomes LogEntry.Component; other scalar
// fields are kept as strings.
type LogWriter struct {
	driver *Driver
}

// NewLogWriter creates a LogWriter that feeds into the given Driver.
func NewLogWriter(d *Driver) *LogWriter {
	return &LogWriter{driver: d}
}

func (w *LogWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel falls back to the level zerolog resolved when the line carries
// none, and to info after that.
func (w *LogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	e := parseLogLine(p)
	if e.Level == "" {
		e.Level = level.String()
	}
	if e.Level == "" {
		e.Level = zerolog.InfoLevel.String()
	}
	w.driver.AddLog(e)
	return len(p), nil
}

func parseLogLine(p []byte) LogEntry {
	line := bytes.TrimSpace(p)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return LogEntry{Time: time.Now(), Message: string(line)}
	}

	e := LogEntry{Time: time.Now()}
	for k, v := range raw {
		switch k {
		case zerolog.LevelFieldName:
			_ = json.Unmarshal(v, &e.Level)
		case zerolog.MessageFieldName:
			_ = json.Unmarshal(v, &e.Message)
		case zerolog.TimestampFieldName:
			var ts string
			if json.Unmarshal(v, &ts) == nil {
				if t, err := time.Parse(time.RFC3339, ts); err == nil {
					e.Time = t
				}
			}
		case "component":
			_ = json.Unmarshal(v, &e.Component)
		default:
			s, ok := scalarString(v)
			if !ok {
				continue
			}
			if e.Fields == nil {
				e.Fields = make(map[string]string)
			}
			e.Fields[k] = s
		}
	}
	return e
}

// scalarString renders strings, numbers and bools. Objects, arrays and null
// are skipped.
func scalarString(v json.RawMessage) (string, bool) {
	var x any
	if err := json.Unmarshal(v, &x); err != nil {
		return "", false
	}
	switch t := x.(type) {
	case string:
		return t, true
	case float64:
		return string(v), true
	case bool:
		return fmt.Sprint(t), true
	}
	return "", false
}

var _ io.Writer = (*LogWriter)(nil)

var _ zerolog.LevelWriter = (*LogWriter)(nil)
