package utils

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/calexandrepcjr/go-sqs/log"
)

func If[T any](condition bool, trueValue, falseValue T) T {
	if condition {
		return trueValue
	}
	return falseValue
}

func Map[T, V any](ts []T, fn func(T) V) []V {
	result := make([]V, len(ts))
	for i, t := range ts {
		result[i] = fn(t)
	}
	return result
}

func Contains[T comparable](s []T, e T) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}

// Try wraps a function and will recover from a panic, logging it when a
// logger is supplied
func Try(f func(), logger ...log.LoggerInterface) {
	defer func() {
		if err := recover(); err != nil {
			if len(logger) > 0 {
				logger[0].ErrorStack(string(debug.Stack()), "%v", err)
			}
		}
	}()

	f()
}

// TryReturn wraps a function with a return value and will recover from a panic by returning an error
func TryReturn[T any](f func() (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if er, ok := r.(error); ok {
				err = er
			} else {
				err = fmt.Errorf("%v", r)
			}
		}
	}()

	return f()
}

// TryCatch wraps a goroutine and will recover from a panic
// It will pass the error message to the catch function on panic
func TryCatch(f func(), catch func(e error, stackTrace string)) {
	defer func() {
		if err := recover(); err != nil {
			if _, ok := err.(error); ok {
				catch(err.(error), string(debug.Stack()))
			} else {
				catch(fmt.Errorf("%v", err), string(debug.Stack()))
			}
		}
	}()

	f()
}

func DurationOrDefault(value, defaultValue time.Duration) time.Duration {
	if value == 0 {
		return defaultValue
	}
	return value
}

func StringOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func IntOrDefault(value, defaultValue int) int {
	if value == 0 {
		return defaultValue
	}
	return value
}
