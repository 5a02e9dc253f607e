package output

import (
	"testing"
	"time"

	"plantmobile/internal/hw/gpio"
	"plantmobile/internal/lux"
	"plantmobile/internal/track"
)

const (
	outerLedPin = 20
	innerLedPin = 12
)

func newTestLeds(t *testing.T) (*DirectionalLeds, *gpio.MockDriver) {
	t.Helper()
	driver := &gpio.MockDriver{}
	leds := NewDirectionalLeds(NewLED(driver, outerLedPin), NewLED(driver, innerLedPin), 30)
	if err := leds.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return leds, driver
}

func ledStatus(outer, inner int) track.Status {
	return track.Status{
		Name: "test",
		Lux:  lux.NewReading(outer, inner, time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)),
	}
}

func TestLED_OnOff(t *testing.T) {
	driver := &gpio.MockDriver{}
	led := NewLED(driver, outerLedPin)
	if err := led.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if driver.Level(outerLedPin) != gpio.Low {
		t.Error("LED not low after setup")
	}
	if err := led.On(); err != nil {
		t.Fatal(err)
	}
	if driver.Level(outerLedPin) != gpio.High {
		t.Error("LED not high after On")
	}
	if err := led.Off(); err != nil {
		t.Fatal(err)
	}
	if driver.Level(outerLedPin) != gpio.Low {
		t.Error("LED not low after Off")
	}
}

func TestDirectionalLeds(t *testing.T) {
	cases := []struct {
		name         string
		outer, inner int
		wantOuter    gpio.Level
		wantInner    gpio.Level
	}{
		{"outer_brighter", 800, 400, gpio.High, gpio.Low},
		{"inner_brighter", 400, 800, gpio.Low, gpio.High},
		{"balanced", 600, 600, gpio.Low, gpio.Low},
		{"below_cutoff", 550, 450, gpio.Low, gpio.Low},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			leds, driver := newTestLeds(t)
			leds.OutputStatus(ledStatus(tc.outer, tc.inner))
			if got := driver.Level(outerLedPin); got != tc.wantOuter {
				t.Errorf("outer LED = %v, want %v", got, tc.wantOuter)
			}
			if got := driver.Level(innerLedPin); got != tc.wantInner {
				t.Errorf("inner LED = %v, want %v", got, tc.wantInner)
			}
		})
	}
}

func TestDirectionalLeds_UpdatesAsLightShifts(t *testing.T) {
	leds, driver := newTestLeds(t)

	leds.OutputStatus(ledStatus(800, 400))
	if driver.Level(outerLedPin) != gpio.High {
		t.Fatal("outer LED not lit")
	}
	leds.OutputStatus(ledStatus(400, 800))
	if driver.Level(outerLedPin) != gpio.Low || driver.Level(innerLedPin) != gpio.High {
		t.Error("LEDs did not follow the brighter side")
	}
}

func TestToggledLed(t *testing.T) {
	driver := &gpio.MockDriver{}
	enabled := true
	led := NewToggledLed(NewLED(driver, outerLedPin), func() bool { return enabled })
	if err := led.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	led.OutputStatus(track.Status{})
	if driver.Level(outerLedPin) != gpio.High {
		t.Error("LED not lit while enabled")
	}

	enabled = false
	led.Update()
	if driver.Level(outerLedPin) != gpio.Low {
		t.Error("LED lit while disabled")
	}
}

func TestWithMinLux_GatesDarkStatuses(t *testing.T) {
	leds, driver := newTestLeds(t)
	gated := WithMinLux(leds, MinOutputLux)

	// A strong relative difference in near-darkness must not light anything.
	gated.OutputStatus(ledStatus(2, 8))
	if driver.Level(outerLedPin) != gpio.Low || driver.Level(innerLedPin) != gpio.Low {
		t.Error("LEDs lit below the minimum output lux")
	}

	gated.OutputStatus(ledStatus(400, 800))
	if driver.Level(innerLedPin) != gpio.High {
		t.Error("LEDs not lit above the minimum output lux")
	}
}

func TestWithMinLux_SwitchesOffWhenLightFades(t *testing.T) {
	leds, driver := newTestLeds(t)
	gated := WithMinLux(leds, MinOutputLux)

	gated.OutputStatus(ledStatus(400, 800))
	if driver.Level(innerLedPin) != gpio.High {
		t.Fatal("inner LED not lit")
	}
	gated.OutputStatus(ledStatus(0, 0))
	if driver.Level(innerLedPin) != gpio.Low {
		t.Error("LED still lit after light faded")
	}
}
