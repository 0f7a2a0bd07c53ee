package log

import (
	"context"

	"github.com/calexandrepcjr/go-sqs/events"
)

type LoggerInterface interface {
	Debug(v ...any)
	Debugf(s string, v ...any)
	Info(v ...any)
	Infof(s string, v ...any)
	InfoEvent(eventType events.Kind, data string)
	ErrorEvent(eventType events.Kind, data string)
	Warning(v ...any)
	Error(v ...any)
	Errorf(s string, v ...any)
	ErrorStack(stack, s string, v ...any)
	DebugFields(msg string, fields map[string]any)
	InfoFields(msg string, fields map[string]interface{})
	ErrorFields(msg string, fields map[string]interface{})
	Fatal(v ...any)
	Fatalf(s string, v ...any)
	GetContext() context.Context
}
