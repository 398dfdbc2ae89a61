package notifier

// Field is one key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

// Logger receives the handler's structured log lines. Adapters exist for
// zerolog; a nil Logger in Config discards everything.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// NoopLogger discards every line.
type NoopLogger struct{}

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}

// errField keeps the error value so adapters can log it as an error.
func errField(err error) Field {
	return Field{Key: "error", Value: err}
}

// deliveryFields are attached to every line logged for one request.
func deliveryFields(req Request, requestID string) []Field {
	fields := []Field{{Key: "request_id", Value: requestID}}
	if req.ClientIP != "" {
		fields = append(fields, Field{Key: "client_ip", Value: req.ClientIP})
	}
	return fields
}
