// Command timelock keeps wall-clock time on a bit-banged DS1302 RTC,
// classifies button gestures, samples ambient sensors, and drives an
// access-control indicator whose unlock state depends on the clock and
// user gestures.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CC4K/timelock/internal/button"
	"github.com/CC4K/timelock/internal/clock"
	"github.com/CC4K/timelock/internal/ds1302"
	"github.com/CC4K/timelock/internal/gpio"
	"github.com/CC4K/timelock/internal/panel"
	"github.com/CC4K/timelock/internal/sensors"
	"github.com/CC4K/timelock/internal/status"
)

type config struct {
	pinCLK, pinDAT, pinRST         int
	pinButton, pinLight            int
	pinLockLED, pinGrantLED        int
	pinDHT                         int
	guard                          time.Duration
	rtcPoll, sensorPoll, panelTick time.Duration
	heartbeat                      time.Duration
	setTime                        string
	printState                     bool
}

func main() {
	var cfg config
	flag.IntVar(&cfg.pinCLK, "pin-clk", gpio.DefaultPinCLK, "BCM pin for the RTC serial clock")
	flag.IntVar(&cfg.pinDAT, "pin-dat", gpio.DefaultPinDAT, "BCM pin for the RTC data line")
	flag.IntVar(&cfg.pinRST, "pin-rst", gpio.DefaultPinRST, "BCM pin for the RTC reset/enable line")
	flag.IntVar(&cfg.pinButton, "pin-button", gpio.DefaultPinButton, "BCM pin for the gesture button")
	flag.IntVar(&cfg.pinLight, "pin-light", gpio.DefaultPinLight, "BCM pin for the light sensor")
	flag.IntVar(&cfg.pinLockLED, "pin-lock-led", gpio.DefaultPinLockLED, "BCM pin for the lock indicator")
	flag.IntVar(&cfg.pinGrantLED, "pin-grant-led", gpio.DefaultPinGrantLED, "BCM pin for the grant indicator")
	flag.IntVar(&cfg.pinDHT, "pin-dht", gpio.DefaultPinDHT, "BCM pin for the DHT22 sensor")
	flag.DurationVar(&cfg.guard, "guard", ds1302.DefaultGuardDelay, "RTC clock-edge guard delay")
	flag.DurationVar(&cfg.rtcPoll, "rtc-poll", time.Second, "RTC polling interval")
	flag.DurationVar(&cfg.sensorPoll, "sensor-poll", sensors.DefaultInterval, "Sensor sampling interval")
	flag.DurationVar(&cfg.panelTick, "panel", panel.DefaultInterval, "Panel aggregation interval")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat log interval (0 to disable)")
	flag.StringVar(&cfg.setTime, "set-time", "", "Provision the RTC to HH:MM:SS and exit")
	flag.BoolVar(&cfg.printState, "print-state", false, "Print current RTC time and exit")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	// Initialize GPIO
	chip, err := gpio.OpenChip()
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	clk, err := chip.Output(cfg.pinCLK)
	if err != nil {
		return err
	}
	rst, err := chip.Output(cfg.pinRST)
	if err != nil {
		return err
	}
	dat, err := chip.Data(cfg.pinDAT)
	if err != nil {
		return err
	}
	tr := ds1302.New(clk, rst, dat, cfg.guard)

	// Provisioning mode
	if cfg.setTime != "" {
		hour, min, sec, err := parseClockFlag(cfg.setTime)
		if err != nil {
			return err
		}
		if err := tr.SetTime(hour, min, sec); err != nil {
			return fmt.Errorf("set time: %w", err)
		}
		log.Printf("rtc set to %02d:%02d:%02d", hour, min, sec)
		return nil
	}

	// Print state mode
	if cfg.printState {
		sec, min, hour, err := tr.BurstRead()
		if err != nil {
			return fmt.Errorf("read rtc: %w", err)
		}
		fmt.Printf("RTC: %02d:%02d:%02d\n", hour, min, sec)
		return nil
	}

	btn, err := chip.Input(cfg.pinButton)
	if err != nil {
		return err
	}
	light, err := chip.Input(cfg.pinLight)
	if err != nil {
		return err
	}
	lockLED, err := chip.Output(cfg.pinLockLED)
	if err != nil {
		return err
	}
	grantLED, err := chip.Output(cfg.pinGrantLED)
	if err != nil {
		return err
	}

	// Event channels: single producer, single consumer, drained every
	// panel cycle.
	ticks := make(chan clock.Fields, 16)
	gestures := make(chan button.Gesture, 16)
	samples := make(chan sensors.Sample, 64)

	rtc := clock.New(tr)
	poller := button.NewPoller(btn)
	sampler := sensors.NewSampler(sensors.NewDHT22(cfg.pinDHT), light, cfg.sensorPoll)

	tracker := status.NewTracker(time.Now(), status.Config{
		RTCPollMs:    cfg.rtcPoll.Milliseconds(),
		SensorPollMs: cfg.sensorPoll.Milliseconds(),
		PanelMs:      cfg.panelTick.Milliseconds(),
		HeartbeatMs:  cfg.heartbeat.Milliseconds(),
		GuardDelayUs: cfg.guard.Microseconds(),
	})
	worker := panel.NewWorker(panel.NewController(rtc), ticks, gestures, samples,
		lockLED, grantLED, tracker, cfg.panelTick, cfg.heartbeat)

	log.Printf("started: rtc-poll=%v sensor-poll=%v panel=%v guard=%v heartbeat=%v",
		cfg.rtcPoll, cfg.sensorPoll, cfg.panelTick, cfg.guard, cfg.heartbeat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rtc.Run(ctx) })
	g.Go(func() error { return rtc.Poll(ctx, cfg.rtcPoll, ticks) })
	g.Go(func() error { return poller.Run(ctx, gestures) })
	g.Go(func() error { return sampler.Run(ctx, samples) })
	g.Go(func() error { return worker.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("shutting down")
	return nil
}

// parseClockFlag parses the -set-time value as HH:MM:SS.
func parseClockFlag(s string) (hour, min, sec int, err error) {
	n, err := fmt.Sscanf(s, "%d:%d:%d", &hour, &min, &sec)
	if err != nil || n != 3 {
		return 0, 0, 0, fmt.Errorf("invalid time %q, want HH:MM:SS", s)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return 0, 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hour, min, sec, nil
}
