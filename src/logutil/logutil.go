package logutil

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLogFile = "interactive_scraper.log"
	maxSizeMB      = 10
	maxArchives    = 3
)

// Component names attached to every record as the "component" attribute.
const (
	CompHotkey   = "hotkey"
	CompLoop     = "loop"
	CompGadget   = "gadget"
	CompBrowser  = "browser"
	CompInstance = "singleinstance"
	CompMain     = "main"
)

type Options struct {
	EnableFileLogging bool
	FilePath          string
	Level             string
	// Console receives records when file logging is disabled. Defaults to stderr.
	Console io.Writer
}

// Setup installs the process-wide slog handler and routes the std log package through it.
// With file logging enabled, records go to a size-rotated file (10MB, max 3 archives);
// otherwise they go to the console writer. The returned closer releases the log file.
func Setup(opts Options) io.Closer {
	var w io.Writer
	var closer io.Closer = nopCloser{}

	if opts.EnableFileLogging {
		path := opts.FilePath
		if path == "" {
			path = DefaultLogFile
		}
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxArchives,
		}
		w = lj
		closer = lj
	} else {
		w = opts.Console
		if w == nil {
			w = os.Stderr
		}
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     ParseLevel(opts.Level),
		AddSource: opts.EnableFileLogging,
	})
	slog.SetDefault(slog.New(handler))
	return closer
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// For returns the default logger tagged with a component name.
func For(component string) *slog.Logger {
	return slog.Default().With("component", component)
}

// Sanitize makes page-controlled text safe for a single log line.
func Sanitize(text string) string {
	const maxLogLength = 100
	if len(text) > maxLogLength {
		cut := maxLogLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString("\\n")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
