package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
)

func newTestConsole() (*console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	c := newConsole(out)
	c.spinnerOut = io.Discard
	return c, out
}

func TestConsole_HoldsLinesWhileSpinning(t *testing.T) {
	c, out := newTestConsole()

	err := c.withSpinner("Deleting tweet...", func() error {
		c.Notify(context.Background(), twitter.MessageTweetDeleted)
		c.ReportStatus(context.Background(), 403)
		if out.Len() != 0 {
			t.Errorf("Expected nothing printed while spinning, got %q", out.String())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withSpinner() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines after the spinner stopped, got %q", out.String())
	}
	if !strings.Contains(lines[0], "Tweet deleted") {
		t.Errorf("Expected first line to announce the deletion, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "status 403") {
		t.Errorf("Expected second line to report status 403, got %q", lines[1])
	}
}

func TestConsole_PrintsImmediatelyWithoutSpinner(t *testing.T) {
	c, out := newTestConsole()

	c.Notify(context.Background(), "custom_key")
	if !strings.Contains(out.String(), "custom_key") {
		t.Errorf("Expected unknown keys to be printed verbatim, got %q", out.String())
	}
}

func TestConsole_SpinnerReturnsError(t *testing.T) {
	c, out := newTestConsole()
	want := io.ErrUnexpectedEOF

	err := c.withSpinner("Fetching...", func() error {
		c.ReportStatus(context.Background(), 500)
		return want
	})
	if err != want {
		t.Errorf("withSpinner() error = %v, want %v", err, want)
	}
	if !strings.Contains(out.String(), "status 500") {
		t.Errorf("Expected held lines to be flushed on failure, got %q", out.String())
	}
}
