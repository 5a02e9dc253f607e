package hcsr04

import (
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/hw/gpio"
)

// Speed of sound at sea level, halved for the echo round trip.
const cmPerSecond = 34300.0 / 2

var errTimeout = errors.New("hcsr04: echo timed out")

// Sensor is an HC-SR04 ultrasonic ranger bit-banged over two GPIO pins. It is
// used to confirm the outer track edge: the platform is "at the edge" when
// the sensor sees nothing in range.
type Sensor struct {
	gpio        gpio.Driver
	trigPin     int
	echoPin     int
	thresholdCm float64
	timeout     time.Duration

	prev    float64
	hasPrev bool

	log zerolog.Logger
}

func New(g gpio.Driver, trigPin, echoPin int, thresholdCm float64, timeout time.Duration, logger zerolog.Logger) *Sensor {
	return &Sensor{
		gpio:        g,
		trigPin:     trigPin,
		echoPin:     echoPin,
		thresholdCm: thresholdCm,
		timeout:     timeout,
		log:         logger.With().Str("component", "hcsr04").Logger(),
	}
}

func (s *Sensor) Setup() error {
	if err := s.gpio.SetupPin(s.trigPin, gpio.Output); err != nil {
		return err
	}
	if err := s.gpio.WritePin(s.trigPin, gpio.Low); err != nil {
		return err
	}
	return s.gpio.SetupPin(s.echoPin, gpio.Input)
}

func (s *Sensor) Off() {}

// Read returns the distance in cm. A timed-out measurement is retried once,
// then degrades to the previously read value, or +Inf when there is none.
// Never returns an error: infinite distance means "nothing in range".
func (s *Sensor) Read() float64 {
	d, err := s.measure()
	if err != nil {
		s.log.Warn().Msg("failed to read distance: retrying")
		d, err = s.measure()
	}
	if err != nil {
		if !s.hasPrev {
			s.log.Warn().Msg("no previous distance: defaulting to +Inf")
			return math.Inf(1)
		}
		s.log.Warn().Float64("prev_cm", s.prev).Msg("failed to read distance: using previous value")
		return s.prev
	}

	s.prev = d
	s.hasPrev = true
	return d
}

// IsInRange reports whether something (the wall at the inner side of the
// track) is within the threshold distance.
func (s *Sensor) IsInRange() bool {
	return s.Read() < s.thresholdCm
}

func (s *Sensor) measure() (float64, error) {
	// 10us trigger pulse starts a measurement.
	if err := s.gpio.WritePin(s.trigPin, gpio.High); err != nil {
		return 0, err
	}
	time.Sleep(10 * time.Microsecond)
	if err := s.gpio.WritePin(s.trigPin, gpio.Low); err != nil {
		return 0, err
	}

	if err := s.waitForEcho(gpio.High); err != nil {
		return 0, err
	}
	start := time.Now()
	if err := s.waitForEcho(gpio.Low); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	return elapsed.Seconds() * cmPerSecond, nil
}

func (s *Sensor) waitForEcho(level gpio.Level) error {
	deadline := time.Now().Add(s.timeout)
	for {
		l, err := s.gpio.ReadPin(s.echoPin)
		if err != nil {
			return err
		}
		if l == level {
			return nil
		}
		if time.Now().After(deadline) {
			return errTimeout
		}
	}
}
