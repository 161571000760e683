package main

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"popreel/internal/upload"
)

func TestFillDetails(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		title           string
		description     string
		wantTitle       string
		wantDescription string
		wantPrompts     int
	}{
		{"flags given", "", "Sunset", "Golden hour", "Sunset", "Golden hour", 0},
		{"both prompted", "Sunset\nGolden hour\n", "", "", "Sunset", "Golden hour", 2},
		{"blank answers asked again", "\n   \nSunset\nGolden hour\n", " ", "", "Sunset", "Golden hour", 4},
		{"only description prompted", "Golden hour\n", "Sunset", "", "Sunset", "Golden hour", 1},
		{"last line without newline", "Sunset\nGolden hour", "", "", "Sunset", "Golden hour", 2},
		{"end of input", "", "", "", "", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			title, description := fillDetails(bufio.NewReader(strings.NewReader(tt.input)), &out, tt.title, tt.description)

			if title != tt.wantTitle || description != tt.wantDescription {
				t.Errorf("Expected (%q, %q), got (%q, %q)", tt.wantTitle, tt.wantDescription, title, description)
			}
			if got := strings.Count(out.String(), ": "); got != tt.wantPrompts {
				t.Errorf("Expected %d prompts, got %d (%q)", tt.wantPrompts, got, out.String())
			}
		})
	}
}

func TestCheckDetails(t *testing.T) {
	if err := checkDetails("Sunset", "Golden hour"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkDetails("  ", "Golden hour"); !errors.Is(err, upload.ErrMissingTitle) {
		t.Errorf("Expected ErrMissingTitle, got %v", err)
	}
	if err := checkDetails("Sunset", "\t"); !errors.Is(err, upload.ErrMissingDescription) {
		t.Errorf("Expected ErrMissingDescription, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false}
	for input, want := range tests {
		var out bytes.Buffer
		if got := confirm(bufio.NewReader(strings.NewReader(input)), &out, "Retry saving?"); got != want {
			t.Errorf("confirm(%q) = %v, want %v", input, got, want)
		}
	}
}
