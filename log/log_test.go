// log/log_test.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNilLogger(t *testing.T) {
	var l *Logger
	// None of these should crash.
	l.Debug("debug")
	l.Debugf("debug %d", 1)
	l.Info("info")
	l.Infof("info %d", 2)
	if l.With("a", 1) != nil {
		t.Errorf("With on nil logger returned non-nil")
	}
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter("warn", &buf)
	l.Info("hidden")
	l.Warnf("shown %d", 42)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, expected 1: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("%v", err)
	}
	if rec["msg"] != "shown 42" {
		t.Errorf("got message %v, expected \"shown 42\"", rec["msg"])
	}
	if _, ok := rec["callstack"]; !ok {
		t.Errorf("callstack attribute missing")
	}
}

func TestCallstack(t *testing.T) {
	fr := func() Stack { return Callstack(0) }()
	if len(fr) == 0 {
		t.Fatalf("empty callstack")
	}
	if fr[0].Function != "log.TestCallstack" {
		t.Errorf("got innermost function %q, expected \"log.TestCallstack\"", fr[0].Function)
	}
	for _, f := range fr {
		if f.File == "" || f.Line == 0 {
			t.Errorf("incomplete frame %+v", f)
		}
	}

	v := fr.LogValue().Any().([]string)
	if len(v) != len(fr) || !strings.HasPrefix(v[0], "log_test.go:") {
		t.Errorf("got log value %v", v)
	}
}

func TestWarnOnce(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter("info", &buf)
	l.WarnOnce("wood", "broken material", "material", "wood")
	l.With("frame", 2).WarnOnce("wood", "broken material", "material", "wood")
	l.WarnOnce("stone", "broken material", "material", "stone")

	if n := strings.Count(buf.String(), "broken material"); n != 2 {
		t.Errorf("got %d warnings, expected 2", n)
	}
}
