package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/simaogato/portfoliosim-backend/internal/usecase/simulation"
)

var _ simulation.Scheduler = (*Cron)(nil)

// Cron is the production simulation.Scheduler. Every scheduled task gets
// its own cron runner so cancelling one session never waits on another.
type Cron struct {
	log zerolog.Logger
}

// NewCron creates a cron backed scheduler
func NewCron(log zerolog.Logger) *Cron {
	return &Cron{log: log.With().Str("component", "scheduler").Logger()}
}

// Schedule runs task every interval, starting one interval from now.
// cron only supports whole seconds and truncates anything finer, so
// callers validate with config.ValidateTickInterval first.
// A run that is still in flight when the next one is due is skipped,
// and a panicking task is logged instead of killing the process.
func (c *Cron) Schedule(interval time.Duration, task func()) func() {
	logger := Logger(c.log)
	runner := cron.New(
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		cron.WithLogger(logger),
	)
	runner.Schedule(cron.Every(interval), cron.FuncJob(task))
	runner.Start()

	c.log.Debug().Dur("interval", interval).Msg("Task scheduled")

	var once sync.Once
	return func() {
		once.Do(func() {
			// Done fires once the in-flight run, if any, has returned
			<-runner.Stop().Done()
			c.log.Debug().Msg("Task cancelled")
		})
	}
}

type cronLogger struct {
	log zerolog.Logger
}

// Logger adapts a zerolog logger to cron.Logger. cron's chatter is
// logged at debug level, its errors at error level.
func Logger(log zerolog.Logger) cron.Logger {
	return cronLogger{log: log}
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
