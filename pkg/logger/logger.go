package logger

// Logger - общий интерфейс логгера, реализации лежат в подпакетах (zap_adapter).
type Logger interface {
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field struct {
	Key   string
	Value any
}

func NewField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Nop глушит все сообщения, удобно в тестах и тулзах.
type Nop struct{}

func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}

func (n Nop) With(...Field) Logger { return n }
