package logging

// Severity ranks log entries. Entries below a logger's configured severity
// are dropped before formatting.
type Severity int

const (
	DEBUG Severity = iota
	INFO
	WARN
	ERROR
)

func (s Severity) String() string {
	switch s {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a case-insensitive level name to a Severity.
// Unrecognized names default to INFO.
func ParseSeverity(name string) Severity {
	switch name {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "WARN", "warning", "WARNING":
		return WARN
	case "error", "ERROR":
		return ERROR
	default:
		return INFO
	}
}
