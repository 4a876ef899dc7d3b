// Package main is a small demonstration harness for the lattice event
// bus: it wires a bus through the service container, binds a couple of
// components, feeds simulated serial traffic through the bus, and dumps
// the counters on exit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dhollis/lattice/di"
	"github.com/dhollis/lattice/event"
	"github.com/dhollis/lattice/event/payload"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		namespace = flag.String("namespace", "", "Event namespace for scoped publishes")
		count     = flag.Int("n", 10, "Number of simulated serial lines")
		interval  = flag.Duration("interval", 200*time.Millisecond, "Delay between simulated lines")
	)
	flag.Parse()

	log := logrus.New()
	lvl, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", *logLevel)
		return 1
	}
	log.SetLevel(lvl)

	container := di.New(log)
	container.RegisterFactory("bus", func(c *di.Container) (any, error) {
		return event.New(
			event.WithLogger(log),
			event.WithNamespace(*namespace),
		), nil
	}, true)

	bus, err := di.As[*event.Bus](container, "bus")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := bus.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	mon := &monitor{log: log}
	if err := monitorBindings.Bind(bus, mon); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	feed(ctx, bus, *count, *interval)

	stopCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	if err := bus.Stop(stopCtx); err != nil {
		log.WithError(err).Warn("worker pool did not drain cleanly")
	}

	stats := bus.Stats()
	fmt.Printf("published=%d delivered=%d enqueued=%d dropped=%d errors=%d\n",
		stats.Published, stats.Delivered, stats.Enqueued, stats.Dropped, stats.HandlerErrors)
	return 0
}

// feed publishes simulated serial lines plus a calculation per line.
func feed(ctx context.Context, bus *event.Bus, count int, interval time.Duration) {
	bus.Publish(ctx, "serial.opened", event.Fields{"port": "/dev/ttyUSB0"})
	defer bus.Publish(ctx, "serial.closed")

	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		bus.Publish(ctx, "serial.data", event.Fields{
			"line": fmt.Sprintf("SENSOR %d", i),
		})
		bus.Publish(ctx, payload.TopicCalcResult, event.Fields{
			"expression": fmt.Sprintf("%d*2", i),
			"result":     fmt.Sprintf("%d", i*2),
		})
	}
}

// monitor watches all serial traffic and logs calculation results.
type monitor struct {
	log   *logrus.Logger
	lines int
}

func (m *monitor) onSerial(ctx context.Context, ev event.Event) (any, error) {
	m.lines++
	m.log.WithFields(logrus.Fields{
		"event": ev.Name,
		"line":  ev.Fields["line"],
	}).Info("serial event")
	return nil, nil
}

func (m *monitor) onCalc(ctx context.Context, ev event.Event) (any, error) {
	res, ok := ev.Payload.(payload.CalcResult)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", ev.Payload)
	}
	m.log.Infof("%s = %s", res.Expression, res.Result)
	return nil, nil
}

var monitorBindings = event.NewBindings[*monitor]().
	OnPattern("serial.*", (*monitor).onSerial).
	On(payload.TopicCalcResult, (*monitor).onCalc, event.WithPriority(event.PriorityHigh))
