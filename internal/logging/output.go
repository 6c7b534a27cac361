package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

const levelFatal = "FATAL"

var (
	outMu  sync.Mutex
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects DEBUG/INFO/WARN lines to out and ERROR/FATAL lines to
// errOut. A nil writer leaves the corresponding stream unchanged. It returns
// a function restoring the previous writers.
func SetOutput(out, errOut io.Writer) (restore func()) {
	outMu.Lock()
	defer outMu.Unlock()
	prevOut, prevErr := stdout, stderr
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
	return func() {
		outMu.Lock()
		defer outMu.Unlock()
		stdout, stderr = prevOut, prevErr
	}
}

// writeLog formats one line and routes it by severity. Fields are written in
// key order so lines are stable across runs.
func (l *Logger) writeLog(level, msg string, fields map[string]interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", GetTimestamp(), level, l.name, msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	b.WriteByte('\n')

	outMu.Lock()
	defer outMu.Unlock()
	if level == strError || level == levelFatal {
		_, _ = io.WriteString(stderr, b.String())
		return
	}
	_, _ = io.WriteString(stdout, b.String())
}

func (l *Logger) logf(level, msg string, args ...interface{}) {
	l.writeLog(level, fmt.Sprintf(msg, args...), l.mergedFields())
}

// GetTimestamp returns the current time in RFC3339, or LOG_TIMESTAMP when set.
func GetTimestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
