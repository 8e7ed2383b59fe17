package core

// Logger is any leveled logger/error reporter. An implementation may inspect
// args for well-known types (e.g. the acting user) and attach them to reports.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
