package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
		SetLevel("info")
	})
	return &buf
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	SetLevel("info")
	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug line written at info level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[INFO] shown 2") {
		t.Errorf("missing info line: %q", buf.String())
	}

	buf.Reset()
	SetLevel(" DEBUG ")
	if !IsDebugEnabled() {
		t.Fatal("expected debug enabled")
	}
	Debugf("visible")
	if !strings.Contains(buf.String(), "[DEBUG] visible") {
		t.Errorf("missing debug line: %q", buf.String())
	}

	buf.Reset()
	SetLevel("error")
	Infof("quiet")
	Errorf("loud")
	if strings.Contains(buf.String(), "quiet") {
		t.Errorf("info line written at error level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("missing error line: %q", buf.String())
	}
}
