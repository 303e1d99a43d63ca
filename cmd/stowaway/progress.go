package main

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// startSpinner shows message beside a spinner on w while slow codec work
// runs. Verbose and debug runs, and writers that are not terminals, log the
// message instead. The returned function stops the spinner.
func (o *options) startSpinner(w io.Writer, message string) func() {
	f, ok := w.(*os.File)
	if o.verbose || o.debug || !ok || !isatty.IsTerminal(f.Fd()) {
		o.log.Infof("%s", message)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = " " + message
	if err := s.Color("cyan"); err != nil {
		o.log.Warnf("Failed to set spinner color: %v", err)
	}
	s.Start()
	return s.Stop
}
