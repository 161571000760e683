package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"popreel/internal/upload"
)

// fillDetails asks on in for a blank title or description. It stops asking at
// end of input, leaving the field blank.
func fillDetails(in *bufio.Reader, out io.Writer, title, description string) (string, string) {
	return ask(in, out, "Title", title), ask(in, out, "Description", description)
}

func ask(in *bufio.Reader, out io.Writer, label, value string) string {
	value = strings.TrimSpace(value)
	for value == "" {
		fmt.Fprintf(out, "%s: ", label)
		line, err := in.ReadString('\n')
		value = strings.TrimSpace(line)
		if err != nil {
			break
		}
	}
	return value
}

func checkDetails(title, description string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return &upload.ValidationError{Field: upload.FieldTitle}
	case strings.TrimSpace(description) == "":
		return &upload.ValidationError{Field: upload.FieldDescription}
	}
	return nil
}

// confirm reads a yes/no answer; anything but y or yes is no.
func confirm(in *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
