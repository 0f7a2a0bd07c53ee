package utils

import (
	"errors"
	"testing"
	"time"
)

func TestIf(t *testing.T) {
	tests := []struct {
		name      string
		condition bool
		trueVal   string
		falseVal  string
		expected  string
	}{
		{"true condition", true, "yes", "no", "yes"},
		{"false condition", false, "yes", "no", "no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := If(tt.condition, tt.trueVal, tt.falseVal)
			if result != tt.expected {
				t.Errorf("If() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMap(t *testing.T) {
	input := []int{1, 2, 3, 4}
	expected := []string{"1", "2", "3", "4"}

	result := Map(input, func(i int) string {
		return string(rune(i + '0'))
	})

	if len(result) != len(expected) {
		t.Errorf("Map() length = %d, want %d", len(result), len(expected))
	}

	for i, v := range result {
		if v != expected[i] {
			t.Errorf("Map()[%d] = %v, want %v", i, v, expected[i])
		}
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		target   string
		expected bool
	}{
		{"present", []string{"a", "b", "c"}, "b", true},
		{"absent", []string{"a", "b", "c"}, "d", false},
		{"empty slice", []string{}, "a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Contains(tt.values, tt.target)
			if result != tt.expected {
				t.Errorf("Contains() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestTry(t *testing.T) {
	// Must not propagate the panic.
	Try(func() {
		panic("boom")
	})
}

func TestTryReturn(t *testing.T) {
	result, err := TryReturn(func() (int, error) {
		return 42, nil
	})
	if err != nil || result != 42 {
		t.Errorf("TryReturn() = (%v, %v), want (42, nil)", result, err)
	}

	_, err = TryReturn(func() (int, error) {
		panic(errors.New("exploded"))
	})
	if err == nil || err.Error() != "exploded" {
		t.Errorf("TryReturn() err = %v, want 'exploded'", err)
	}

	_, err = TryReturn(func() (int, error) {
		panic("not an error")
	})
	if err == nil || err.Error() != "not an error" {
		t.Errorf("TryReturn() err = %v, want 'not an error'", err)
	}
}

func TestTryCatch(t *testing.T) {
	var caught error
	var stack string

	TryCatch(func() {
		panic("kaboom")
	}, func(e error, stackTrace string) {
		caught = e
		stack = stackTrace
	})

	if caught == nil || caught.Error() != "kaboom" {
		t.Errorf("TryCatch() caught = %v, want 'kaboom'", caught)
	}

	if stack == "" {
		t.Error("TryCatch() captured empty stack trace")
	}

	caught = nil
	TryCatch(func() {}, func(e error, stackTrace string) {
		caught = e
	})

	if caught != nil {
		t.Errorf("TryCatch() caught = %v for non-panicking func, want nil", caught)
	}
}

func TestOrDefaults(t *testing.T) {
	if got := StringOrDefault("", "fallback"); got != "fallback" {
		t.Errorf("StringOrDefault() = %v, want fallback", got)
	}
	if got := StringOrDefault("value", "fallback"); got != "value" {
		t.Errorf("StringOrDefault() = %v, want value", got)
	}

	if got := IntOrDefault(0, 7); got != 7 {
		t.Errorf("IntOrDefault() = %v, want 7", got)
	}
	if got := IntOrDefault(3, 7); got != 3 {
		t.Errorf("IntOrDefault() = %v, want 3", got)
	}

	if got := DurationOrDefault(0, time.Second); got != time.Second {
		t.Errorf("DurationOrDefault() = %v, want 1s", got)
	}
	if got := DurationOrDefault(time.Minute, time.Second); got != time.Minute {
		t.Errorf("DurationOrDefault() = %v, want 1m", got)
	}
}
