package output

import (
	"fmt"
	"os"

	"plantmobile/internal/lux"
	"plantmobile/internal/track"
)

// LightCsvLogger logs light data to csv in minutely intervals.
// Format of each line is "isotimestamp,outer_lux,inner_lux".
type LightCsvLogger struct {
	filename  string
	file      *os.File
	curMinute string
	readings  []lux.Reading
}

func NewLightCsvLogger(filename string) *LightCsvLogger {
	return &LightCsvLogger{filename: filename}
}

func (l *LightCsvLogger) Setup() error {
	if l.file != nil {
		return nil
	}
	f, err := os.OpenFile(l.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv log: %w", err)
	}
	l.file = f
	return nil
}

func (l *LightCsvLogger) Off() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

// OutputStatus buffers readings within the current minute and emits one
// averaged line when a minute boundary is crossed. Never more than one line
// per minute.
func (l *LightCsvLogger) OutputStatus(status track.Status) {
	if l.file == nil {
		panic("output: must call Setup to initialize csv logger")
	}

	// Timestamp truncated down to the minute.
	minute := status.Lux.Timestamp.Format("2006-01-02T15:04")

	if l.curMinute == "" {
		l.curMinute = minute
	} else if l.curMinute != minute {
		// We've moved past a minute boundary: flush the buffered readings.
		if len(l.readings) == 0 {
			panic("output: minute boundary with no lux data")
		}
		var outerSum, innerSum int
		for _, r := range l.readings {
			outerSum += r.Outer
			innerSum += r.Inner
		}
		n := len(l.readings)
		fmt.Fprintf(l.file, "%s,%d,%d\n", l.curMinute, outerSum/n, innerSum/n)

		l.curMinute = minute
		l.readings = l.readings[:0]
	}

	l.readings = append(l.readings, status.Lux)
}
