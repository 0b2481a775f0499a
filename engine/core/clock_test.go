package core

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	c := NewClock()
	c.Update()
	if c.Elapsed() != 0 {
		t.Fatal("a clock that was never started must not advance")
	}

	c.Start()
	time.Sleep(5 * time.Millisecond)
	c.Update()
	first := c.Elapsed()
	if first <= 0 {
		t.Fatalf("elapsed = %f", first)
	}

	c.Stop()
	time.Sleep(2 * time.Millisecond)
	c.Update()
	if c.Elapsed() != first {
		t.Fatal("stopped clock must keep its elapsed time")
	}
}

func TestMetrics(t *testing.T) {
	if err := MetricsInitialize(); err != nil {
		t.Fatal(err)
	}
	// 60 frames of 1/60s accumulate a little over one second
	for i := 0; i < 61; i++ {
		MetricsUpdate(1.0 / 60.0)
	}
	fps, ms := MetricsFrame()
	if fps < 59 || fps > 61 {
		t.Fatalf("fps = %f", fps)
	}
	if ms < 16 || ms > 17 {
		t.Fatalf("avg frame ms = %f", ms)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"", InfoLevel, false},
		{"debug", DebugLevel, false},
		{"WARN", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"verbose", InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
