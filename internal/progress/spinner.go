package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerDelay = 100 * time.Millisecond

// Indicator is a single-line activity spinner. A disabled Indicator
// writes nothing.
type Indicator struct {
	w       io.Writer
	symbols ProgressSymbols
	spin    *spinner.Spinner
}

// NewIndicator returns an Indicator drawing on w. It is enabled only when
// caps reports a terminal.
func NewIndicator(w io.Writer, caps TerminalCapabilities) *Indicator {
	ind := &Indicator{w: w, symbols: SelectSymbols(caps)}
	if caps.IsTTY {
		ind.spin = spinner.New(spinner.CharSets[ind.symbols.SpinnerSet], spinnerDelay,
			spinner.WithWriter(w),
			spinner.WithHiddenCursor(true),
		)
		if caps.SupportsColor {
			_ = ind.spin.Color("cyan")
		}
	}
	return ind
}

// Enabled reports whether the Indicator draws anything.
func (i *Indicator) Enabled() bool {
	return i.spin != nil
}

// Start shows the spinner followed by msg.
func (i *Indicator) Start(msg string) {
	if i.spin == nil {
		return
	}
	i.spin.Suffix = " " + msg
	i.spin.Start()
}

// Stop clears the spinner and leaves a completion line with msg. An empty
// msg leaves nothing behind.
func (i *Indicator) Stop(ok bool, msg string) {
	if i.spin == nil {
		return
	}
	i.spin.FinalMSG = ""
	if msg != "" {
		mark := i.symbols.Checkmark
		if !ok {
			mark = i.symbols.Failure
		}
		i.spin.FinalMSG = fmt.Sprintf("%s %s\n", mark, msg)
	}
	i.spin.Stop()
}
