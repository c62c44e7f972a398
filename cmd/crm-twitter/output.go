package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/NethermindEth/crm-twitter/pkg/twitter"
	"github.com/NethermindEth/crm-twitter/pkg/utils/errors"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	fail    = color.New(color.FgRed).SprintFunc()
	info    = color.New(color.FgCyan).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
)

var messageTexts = map[string]string{
	twitter.MessageTweetSent:    "Tweet sent",
	twitter.MessageTweetDeleted: "Tweet deleted",
	twitter.MessageFollow:       "Account followed",
	twitter.MessageUnfollow:     "Account unfollowed",
}

// console prints gateway notifications to out. Lines raised while a spinner
// is running are held back until it stops, so they never share a line with it.
type console struct {
	mu         sync.Mutex
	out        io.Writer
	spinnerOut io.Writer
	spinning   bool
	pending    []string
}

var term = newConsole(os.Stdout)

func newConsole(out io.Writer) *console {
	return &console{out: out, spinnerOut: out}
}

func (c *console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spinning {
		c.pending = append(c.pending, line)
		return
	}
	fmt.Fprintln(c.out, line)
}

func (c *console) Notify(_ context.Context, key string) {
	text, ok := messageTexts[key]
	if !ok {
		text = key
	}
	c.println(fmt.Sprintf("%s %s", success("✓"), text))
}

func (c *console) ReportStatus(_ context.Context, statusCode int) {
	c.println(fmt.Sprintf("%s Twitter answered with status %d", fail("❌"), statusCode))
}

// withSpinner runs fn while a spinner with the given suffix is shown, then
// flushes the lines raised in the meantime.
func (c *console) withSpinner(suffix string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.spinnerOut))
	s.Suffix = " " + suffix

	c.mu.Lock()
	c.spinning = true
	c.mu.Unlock()

	s.Start()
	err := fn()
	s.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.spinning = false
	for _, line := range c.pending {
		fmt.Fprintln(c.out, line)
	}
	c.pending = nil
	return err
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", fail("❌"), err)
	if errors.TypeOf(err) == errors.TypeConfig {
		fmt.Fprintf(os.Stderr, "%s check the TWITTER_* and CRM_TWITTER_ACCOUNT_ID variables\n", warn("!"))
	}
}
