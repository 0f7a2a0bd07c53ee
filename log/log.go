package log

import (
	"context"

	"github.com/calexandrepcjr/go-sqs/events"
)

var logger = New(context.Background(), nil)

func Debug(v ...any) {
	logger.Debug(v...)
}

func Debugf(s string, v ...any) {
	logger.Debugf(s, v...)
}

func Info(v ...any) {
	logger.Info(v...)
}

func Infof(s string, v ...any) {
	logger.Infof(s, v...)
}

func InfoEvent(eventType events.Kind, data string) {
	logger.InfoEvent(eventType, data)
}

func ErrorEvent(eventType events.Kind, data string) {
	logger.ErrorEvent(eventType, data)
}

func Warning(v ...any) {
	logger.Warning(v...)
}

func Error(v ...any) {
	logger.Error(v...)
}

func Errorf(s string, v ...any) {
	logger.Errorf(s, v...)
}

func ErrorStack(stack, s string, v ...any) {
	logger.ErrorStack(stack, s, v...)
}

// DebugFields logs a debug level message with structured fields
func DebugFields(msg string, fields map[string]any) {
	logger.DebugFields(msg, fields)
}

// InfoFields logs an info level message with structured fields
func InfoFields(msg string, fields map[string]interface{}) {
	logger.InfoFields(msg, fields)
}

// ErrorFields logs an error level message with structured fields
func ErrorFields(msg string, fields map[string]interface{}) {
	logger.ErrorFields(msg, fields)
}

func Fatal(v ...any) {
	logger.Fatal(v...)
}

func Fatalf(s string, v ...any) {
	logger.Fatalf(s, v...)
}

func GetContext() context.Context {
	return logger.GetContext()
}
