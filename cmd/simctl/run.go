package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/google/subcommands"

	"github.com/simaogato/portfoliosim-backend/internal/adapter/scheduler"
	"github.com/simaogato/portfoliosim-backend/internal/config"
	"github.com/simaogato/portfoliosim-backend/internal/domain"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/simulation"
	"github.com/simaogato/portfoliosim-backend/pkg/logger"
)

type runCmd struct {
	out      io.Writer
	assets   string
	total    float64
	risk     float64
	ticks    int
	interval time.Duration
	seed     uint64
	logLevel string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run a simulation session locally and print every tick" }
func (*runCmd) Usage() string {
	return `simctl run -assets <SYMBOL[:MARKET[:PERCENT]],...> [-total <amount>] [-risk <0-100>]
           [-ticks <n>] [-interval <duration>] [-seed <n>]

  Allocates the portfolio, starts a session and prints a snapshot after each
  tick. With -interval 0 ticks run back to back; otherwise they follow the
  wall clock (whole seconds, minimum 1s). The session is reset when done.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assets, "assets", "", "Comma separated assets, e.g. 2330.TW:TW:30,AAPL:US:70. Percentages are all or nothing.")
	f.Float64Var(&c.total, "total", 100000, "Total investment.")
	f.Float64Var(&c.risk, "risk", 50, "Risk preference, 0 to 100.")
	f.IntVar(&c.ticks, "ticks", 10, "Number of ticks to run.")
	f.DurationVar(&c.interval, "interval", 0, "Wall clock tick interval, 0 to fast-forward.")
	f.Uint64Var(&c.seed, "seed", 0, "Random seed, 0 for a random run.")
	f.StringVar(&c.logLevel, "log-level", "warn", "Log level written to stderr.")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	assets, err := parseAssets(c.assets)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if c.ticks <= 0 {
		fmt.Fprintln(os.Stderr, "-ticks must be positive")
		return subcommands.ExitUsageError
	}

	logr := logger.New(logger.Config{Level: c.logLevel, Pretty: true, Output: os.Stderr})

	cfg := simulation.ManagerConfig{Seed: c.seed, MaxSessions: 1, Logger: logr}
	var manual *simulation.ManualScheduler
	if c.interval == 0 {
		manual = simulation.NewManualScheduler()
		cfg.Scheduler = manual
		cfg.Interval = simulation.DefaultTickInterval
		cfg.Now = steppingClock(time.Now(), cfg.Interval)
	} else {
		if err := config.ValidateTickInterval(c.interval); err != nil {
			fmt.Fprintf(os.Stderr, "-interval must be 0 or whole seconds: %v\n", err)
			return subcommands.ExitUsageError
		}
		cfg.Scheduler = scheduler.NewCron(logr)
		cfg.Interval = c.interval
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	manager := simulation.NewManager(cfg)
	defer manager.Shutdown()

	session, err := manager.StartSession(ctx, &domain.AllocationRequest{
		Assets:          assets,
		TotalInvestment: c.total,
		RiskPreference:  c.risk,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	updates, unsubscribe := session.Subscribe(c.ticks)
	defer unsubscribe()

	renderSnapshot(c.out, session.Snapshot())

	for ticks := 0; ticks < c.ticks; {
		if manual != nil {
			manual.Fire()
		}

		select {
		case snap, open := <-updates:
			if !open {
				return subcommands.ExitSuccess
			}
			fmt.Fprintln(c.out)
			renderSnapshot(c.out, snap)
			ticks = snap.ElapsedTicks
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "interrupted")
			return subcommands.ExitFailure
		}
	}

	if err := manager.Reset(ctx, session.ID()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// steppingClock stamps fast-forwarded ticks as if they ran on schedule
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}
