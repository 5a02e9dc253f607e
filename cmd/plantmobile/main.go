package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"plantmobile/internal/config"
	"plantmobile/internal/control"
	"plantmobile/internal/hw/button"
	"plantmobile/internal/hw/gpio"
	"plantmobile/internal/hw/hcsr04"
	"plantmobile/internal/hw/i2cdev"
	"plantmobile/internal/hw/lightsensor"
	"plantmobile/internal/hw/stepper"
	"plantmobile/internal/hw/voltage"
	"plantmobile/internal/output"
	"plantmobile/internal/track"
)

// Simulated light levels for mock mode, chosen to wander across the dim/bright
// thresholds so the avoider has something to react to.
const (
	simBaseLux      = 400
	simLuxVariation = 150
)

func main() {
	// CLI flags
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	mock := flag.Bool("mock", false, "force mock GPIO and simulated sensors")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Registered first so it runs after all hardware cleanup.
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		logger.Fatal().Err(err).Msg("invalid config path")
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config failed")
	}
	level, err := zerolog.ParseLevel(cfg.Defaults.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Str("level", cfg.Defaults.LogLevel).Msg("invalid log level")
	}
	logger = logger.Level(level)

	// Initialize GPIO driver
	mockMode := cfg.Defaults.MockGPIO || *mock
	gpioDriver, err := gpio.NewDriver(mockMode)
	if err != nil {
		logger.Fatal().Err(err).Msg("init GPIO failed")
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing GPIO driver failed")
		}
	}()

	// The light sensors share one I2C mux; mock mode simulates them instead.
	var mux *i2cdev.TCA9548A
	if !mockMode {
		mux, err = i2cdev.NewTCA9548A(cfg.Defaults.I2CBus, i2cdev.DefaultMuxAddr)
		if err != nil {
			logger.Fatal().Err(err).Str("bus", cfg.Defaults.I2CBus).Msg("open I2C mux failed")
		}
		defer mux.Close()
	}

	// Build and set up the platforms. A platform whose hardware fails setup
	// (sensor unplugged, bus flaky) is excluded rather than taking down the
	// rest.
	var platforms []*track.Platform
	var csvLogs []string
	for _, pc := range cfg.Platforms {
		p := buildPlatform(gpioDriver, mux, cfg.Defaults.I2CBus, mockMode, pc, logger)
		if err := p.Setup(); err != nil {
			logger.Error().Err(err).Str("platform", pc.Name).Msg("platform setup failed: excluding")
			continue
		}
		logger.Info().Str("platform", pc.Name).Bool("mobile", p.Mobile()).Msg("platform up")
		platforms = append(platforms, p)
		csvLogs = append(csvLogs, pc.CsvLog)
	}
	if len(platforms) == 0 {
		logger.Fatal().Msg("no platform came up")
	}
	defer func() {
		for _, p := range platforms {
			p.Off()
		}
	}()

	mobile := pickMobile(platforms)
	if mobile == nil {
		logger.Warn().Msg("no mobile platform: running sense-only")
	}

	// The enable toggle gates the shadow avoider; manual button moves always
	// work. Starts enabled.
	enabled := button.NewToggle(true)

	// Indicator panel for the mobile platform.
	var leds *output.DirectionalLeds
	var enableLed *output.ToggledLed
	var buzzer *output.Buzzer
	var panelOutputs []output.Output
	if cfg.Panel != nil {
		leds = output.NewDirectionalLeds(
			output.NewLED(gpioDriver, cfg.Panel.OuterLedPin),
			output.NewLED(gpioDriver, cfg.Panel.InnerLedPin),
			cfg.Avoider.DiffPercentCutoff,
		)
		enableLed = output.NewToggledLed(output.NewLED(gpioDriver, cfg.Panel.EnableLedPin), enabled.Enabled)
		buzzer = output.NewBuzzer(gpioDriver, cfg.Panel.BuzzerPin)
		panelOutputs = append(panelOutputs, output.WithMinLux(leds, output.MinOutputLux), enableLed)
	}

	// Manual-override buttons need the GPIO character device; mock mode runs
	// without them.
	var outerBtn, innerBtn *button.Button
	if !mockMode && cfg.Buttons != nil && mobile != nil {
		hold := cfg.Buttons.HoldThreshold()
		if outerBtn, err = button.New(cfg.Buttons.Chip, cfg.Buttons.OuterPin, hold, logger); err != nil {
			logger.Warn().Err(err).Msg("outer button unavailable: manual control disabled")
		} else if innerBtn, err = button.New(cfg.Buttons.Chip, cfg.Buttons.InnerPin, hold, logger); err != nil {
			logger.Warn().Err(err).Msg("inner button unavailable: manual control disabled")
			outerBtn.Close()
			outerBtn = nil
		} else {
			defer outerBtn.Close()
			defer innerBtn.Close()
		}

		if enableBtn, err := button.New(cfg.Buttons.Chip, cfg.Buttons.EnablePin, 0, logger); err != nil {
			logger.Warn().Err(err).Msg("enable button unavailable: avoider stays enabled")
		} else {
			enableBtn.SetHandlers(func() {
				enabled.Press()
				if enableLed != nil {
					enableLed.Update()
				}
				logger.Info().Bool("enabled", enabled.Enabled()).Msg("avoider toggled")
			}, nil, nil)
			defer enableBtn.Close()
		}
	}

	// One control loop per platform. Only the mobile platform gets
	// controllers and the indicator panel; the others just render their
	// sensors.
	errCh := make(chan error, len(platforms))
	for i, p := range platforms {
		outputs := make([]output.Output, 0, len(panelOutputs)+1)
		var panelLeds *output.DirectionalLeds
		var panelBuzzer *output.Buzzer
		if p == mobile {
			outputs = append(outputs, panelOutputs...)
			panelLeds, panelBuzzer = leds, buzzer
		}
		if csvLogs[i] != "" {
			outputs = append(outputs, output.NewLightCsvLogger(csvLogs[i]))
		}

		panel := output.NewDebugPanel(logger, panelLeds, panelBuzzer, outputs...)
		if err := panel.Setup(); err != nil {
			logger.Fatal().Err(err).Str("platform", p.Name).Msg("panel setup failed")
		}
		defer panel.Off()

		printer := output.NewStatusPrinter(os.Stdout, cfg.PrintInterval())

		var controllers []control.Controller
		if p == mobile {
			controllers = append(controllers,
				control.NewBatteryKeepAlive(p, cfg.PingInterval(), cfg.PingDuration(), enabled.Enabled, logger))
			if outerBtn != nil && innerBtn != nil {
				controllers = append(controllers,
					control.NewButtonHandler(p, panel, printer, outerBtn, innerBtn, logger))
			}
			controllers = append(controllers,
				control.NewShadowAvoider(p, panel, printer, enabled.Enabled, control.AvoiderConfig{
					DiffPercentCutoff:  cfg.Avoider.DiffPercentCutoff,
					DimLuxThreshold:    cfg.Avoider.DimLuxThreshold,
					BrightLuxThreshold: cfg.Avoider.BrightLuxThreshold,
					RunInterval:        cfg.RunInterval(),
				}, logger))
		}

		go func(p *track.Platform, panel *output.DebugPanel, printer *output.StatusPrinter, controllers []control.Controller) {
			errCh <- control.Loop(ctx, p, panel, printer, controllers, cfg.ControlInterval(), logger)
		}(p, panel, printer, controllers)
	}

	for range platforms {
		if err := <-errCh; err != nil {
			logger.Error().Err(err).Msg("control loop failed")
			exitCode = 1
			cancel()
		}
	}
}

// buildPlatform assembles a platform's sensors and motor from its config.
// Components that need real hardware buses are simulated or dropped in mock
// mode.
func buildPlatform(
	g gpio.Driver,
	mux *i2cdev.TCA9548A,
	bus string,
	mockMode bool,
	pc config.PlatformConfig,
	logger zerolog.Logger,
) *track.Platform {
	var lights track.LightSensor
	if mockMode {
		lights = lightsensor.NewSim(simBaseLux, simLuxVariation)
	} else {
		lights = lightsensor.NewPaired(bus, mux, pc.LightSensor.OuterChannel, pc.LightSensor.InnerChannel, logger)
	}

	var motor track.Motor
	if pc.Motor != nil {
		var pins [4]int
		copy(pins[:], pc.Motor.Pins)
		motor = stepper.New(g, stepper.Config{Pins: pins, StepDelay: pc.Motor.StepDelay()})
	}

	var distance track.DistanceSensor
	if pc.DistanceSensor != nil {
		distance = hcsr04.New(g, pc.DistanceSensor.TrigPin, pc.DistanceSensor.EchoPin,
			pc.DistanceSensor.ThresholdCm, pc.DistanceSensor.Timeout(), logger)
	}

	var volts track.VoltageReader
	if !mockMode && pc.VoltageReader != nil {
		volts = voltage.NewReader(bus, pc.VoltageReader.Channel,
			pc.VoltageReader.R1KOhm, pc.VoltageReader.R2KOhm, logger)
	}

	return track.NewPlatform(pc.Name, lights, motor, distance, volts, logger)
}

// pickMobile returns the first platform that can actually be driven.
func pickMobile(platforms []*track.Platform) *track.Platform {
	for _, p := range platforms {
		if p.Mobile() {
			return p
		}
	}
	return nil
}
