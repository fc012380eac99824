// Package report renders sweep results for the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/signalsfoundry/debris-tracker/core"
	"github.com/signalsfoundry/debris-tracker/model"
)

// NoApproaches is printed when a sweep finds nothing under the threshold.
const NoApproaches = "No close approaches detected within the threshold."

// ObjectLabel renders an object's name with its classification, if any:
// "NAME [Debris 87%]".
func ObjectLabel(o model.SpaceObject) string {
	if o.Class == nil {
		return o.Name
	}
	return fmt.Sprintf("%s [%s %.0f%%]", o.Name, o.Class.Label, o.Class.Confidence*100)
}

// Alert renders a single close approach.
func Alert(ev core.CloseApproach) string {
	return fmt.Sprintf("Close approach: %s ↔ %s — %.2f km at %s",
		ObjectLabel(ev.A), ObjectLabel(ev.B), ev.DistanceKm, ev.TimeOfDay())
}

// Alerts renders every event in order.
func Alerts(events []core.CloseApproach) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = Alert(ev)
	}
	return out
}

// Printer writes human-readable output.
type Printer struct {
	out    io.Writer
	alert  *color.Color
	ok     *color.Color
	header *color.Color
	warn   *color.Color
}

// NewPrinter returns a Printer writing to out. Colour is dropped when
// noColor is set or when color.NoColor says the terminal cannot show it.
func NewPrinter(out io.Writer, noColor bool) *Printer {
	p := &Printer{
		out:    out,
		alert:  color.New(color.FgRed, color.Bold),
		ok:     color.New(color.FgGreen),
		header: color.New(color.FgCyan),
		warn:   color.New(color.FgYellow),
	}
	if noColor {
		for _, c := range []*color.Color{p.alert, p.ok, p.header, p.warn} {
			c.DisableColor()
		}
	}
	return p
}

// Sweep prints the run header, one alert per event, and a closing line. The
// header counts the objects that propagated, not those requested.
func (p *Printer) Sweep(res core.SweepResult, cfg core.SweepConfig) {
	p.header.Fprintf(p.out, "Checking %d satellites over %s at %s resolution...\n",
		res.Tracked, cfg.Duration, cfg.Step)
	if len(res.Skipped) > 0 {
		p.warn.Fprintf(p.out, "Skipped %d objects that failed to propagate.\n", len(res.Skipped))
	}
	if len(res.Events) == 0 {
		p.ok.Fprintln(p.out, NoApproaches)
		return
	}
	for _, line := range Alerts(res.Events) {
		p.alert.Fprintln(p.out, line)
	}
}

// Positions prints one "NAME: lat=…, lon=…" line per entry.
func (p *Printer) Positions(names []string, positions []core.GeodeticPosition) {
	for i, pos := range positions {
		fmt.Fprintf(p.out, "%s: lat=%.2f, lon=%.2f\n", names[i], pos.LatitudeDeg, pos.LongitudeDeg)
	}
}

// Line prints a plain line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints a green line.
func (p *Printer) Success(format string, args ...any) {
	p.ok.Fprintf(p.out, format+"\n", args...)
}

// Warn prints a yellow line.
func (p *Printer) Warn(format string, args ...any) {
	p.warn.Fprintf(p.out, format+"\n", args...)
}
