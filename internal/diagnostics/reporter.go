package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

var (
	ErrorColorFG = pterm.FgRed
	ErrorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	WarnColorFG  = pterm.FgYellow
	WarnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	InfoColorFG  = pterm.FgLightGreen
	InfoStyleBG  = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
)

// Reporter renders diagnostics for a terminal or a plain stream.
type Reporter struct {
	out   io.Writer
	color bool

	errorCount   int
	warningCount int
}

// NewReporter writes to out. Colour is enabled only when out is a terminal.
func NewReporter(out io.Writer) *Reporter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{out: out, color: color}
}

// NewPlainReporter never emits colour codes.
func NewPlainReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) ErrorCount() int   { return r.errorCount }
func (r *Reporter) WarningCount() int { return r.warningCount }

// Report renders any error; diagnostics get a banner, others a one-liner.
func (r *Reporter) Report(err error) {
	switch e := err.(type) {
	case *DiagnosticError:
		r.reportDiagnostic(e)
	case *InternalError:
		r.errorCount++
		r.banner(true, "Internal Error")
		fmt.Fprintln(r.out, e.Message)
		fmt.Fprintln(r.out, "This is a compiler bug, not a problem with your code.")
	default:
		r.errorCount++
		r.banner(true, "Error")
		fmt.Fprintln(r.out, err.Error())
	}
}

func (r *Reporter) reportDiagnostic(d *DiagnosticError) {
	isErr := !d.Code.IsWarning()
	if isErr {
		r.errorCount++
	} else {
		r.warningCount++
	}
	kind := d.Code.Title()
	if isErr {
		kind += " Error"
	} else {
		kind += " Warning"
	}
	r.banner(isErr, kind)
	if d.Module != "" {
		fmt.Fprintf(r.out, "%s (%s)\n", d.Module, d.Region)
	}
	fmt.Fprintln(r.out, d.Message)
}

func (r *Reporter) banner(isErr bool, kind string) {
	fmt.Fprint(r.out, "\n-- ")
	if !r.color {
		fmt.Fprint(r.out, kind)
	} else if isErr {
		fmt.Fprint(r.out, ErrorStyleBG.Sprint(kind))
	} else {
		fmt.Fprint(r.out, WarnStyleBG.Sprint(kind))
	}
	dashes := 40 - len(kind)
	if dashes < 3 {
		dashes = 3
	}
	fmt.Fprintln(r.out, " "+strings.Repeat("-", dashes))
}

// Info prints a tagged informational line.
func (r *Reporter) Info(tag, msg string) {
	if r.color {
		fmt.Fprintln(r.out, InfoStyleBG.Sprint(tag)+" "+InfoColorFG.Sprint(msg))
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", tag, msg)
}

// Summary prints the closing line of a compilation.
func (r *Reporter) Summary() {
	msg := fmt.Sprintf("%d error(s), %d warning(s)", r.errorCount, r.warningCount)
	switch {
	case !r.color:
		fmt.Fprintln(r.out, msg)
	case r.errorCount > 0:
		fmt.Fprintln(r.out, ErrorColorFG.Sprint(msg))
	case r.warningCount > 0:
		fmt.Fprintln(r.out, WarnColorFG.Sprint(msg))
	default:
		fmt.Fprintln(r.out, InfoColorFG.Sprint(msg))
	}
}
