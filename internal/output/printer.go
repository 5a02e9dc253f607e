package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"plantmobile/internal/track"
)

// headerEvery is how many rows are printed between repeated headers.
const headerEvery = 20

// rowFormat uses fixed column widths so rows printed one at a time stay
// aligned with each other and with the repeated header.
const rowFormat = "%-14s  %9s  %9s  %11s  %6s  %12s  %8s  %-10s  %13s\n"

// StatusPrinter prints statuses as table rows at a configurable interval.
type StatusPrinter struct {
	out         io.Writer
	interval    time.Duration
	lastPrinted time.Time
	rows        int
}

func NewStatusPrinter(out io.Writer, interval time.Duration) *StatusPrinter {
	return &StatusPrinter{out: out, interval: interval}
}

func (p *StatusPrinter) Setup() error { return nil }

func (p *StatusPrinter) Off() {}

// OutputStatus prints the status unless one was printed within the
// configured interval.
func (p *StatusPrinter) OutputStatus(status track.Status) {
	if time.Since(p.lastPrinted) < p.interval {
		return
	}
	p.print(status)
}

// ForceOutput prints the status regardless of the interval.
func (p *StatusPrinter) ForceOutput(status track.Status) {
	p.print(status)
}

// Reset makes the next OutputStatus print immediately.
func (p *StatusPrinter) Reset() {
	p.lastPrinted = time.Time{}
}

func (p *StatusPrinter) print(status track.Status) {
	if p.rows%headerEvery == 0 {
		fmt.Fprintf(p.out, rowFormat, "name", "outer_lux", "inner_lux", "average_lux",
			"diff", "diff_percent", "position", "region", "motor_voltage")
	}

	position := "-"
	if status.Position != nil {
		position = strconv.Itoa(*status.Position)
	}
	voltage := "-"
	if status.MotorVoltage != nil {
		voltage = fmt.Sprintf("%.2f", *status.MotorVoltage)
	}

	fmt.Fprintf(p.out, rowFormat,
		status.Name, strconv.Itoa(status.Lux.Outer), strconv.Itoa(status.Lux.Inner),
		strconv.Itoa(status.Lux.Avg), strconv.Itoa(status.Lux.Diff),
		strconv.Itoa(status.Lux.DiffPercent)+"%", position, status.Region.String(), voltage)

	p.lastPrinted = time.Now()
	p.rows++
}
