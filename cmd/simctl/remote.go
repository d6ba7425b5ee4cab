package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpcadapter "github.com/simaogato/portfoliosim-backend/internal/adapter/grpc"
	"github.com/simaogato/portfoliosim-backend/internal/domain"
)

// remoteFlags are shared by every command talking to a server
type remoteFlags struct {
	addr    string
	token   string
	timeout time.Duration
}

func (r *remoteFlags) setFlags(f *flag.FlagSet) {
	f.StringVar(&r.addr, "addr", envOr("SIMCTL_ADDR", "localhost:8080"), "Server gRPC address.")
	f.StringVar(&r.token, "token", envOr("API_TOKEN", "dev-token"), "API token.")
	f.DurationVar(&r.timeout, "timeout", 5*time.Second, "Request timeout.")
}

func (r *remoteFlags) dial() (*grpcadapter.Client, func(), error) {
	conn, err := grpclib.NewClient(r.addr,
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
		grpclib.WithUnaryInterceptor(grpcadapter.TokenInterceptor(r.token)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", r.addr, err)
	}
	return grpcadapter.NewClient(conn), func() { _ = conn.Close() }, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type startCmd struct {
	remoteFlags
	out    io.Writer
	assets string
	total  float64
	risk   float64
}

func (*startCmd) Name() string     { return "start" }
func (*startCmd) Synopsis() string { return "start a session on the server" }
func (*startCmd) Usage() string {
	return `simctl start -assets <SYMBOL[:MARKET[:PERCENT]],...> [-total <amount>] [-risk <0-100>]

  Submits the allocation and prints the new session's first snapshot.
`
}

func (c *startCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.assets, "assets", "", "Comma separated assets, e.g. 2330.TW:TW:30,AAPL:US:70.")
	f.Float64Var(&c.total, "total", 100000, "Total investment.")
	f.Float64Var(&c.risk, "risk", 50, "Risk preference, 0 to 100.")
}

func (c *startCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	assets, err := parseAssets(c.assets)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	client, closeConn, err := c.dial()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	snap, err := client.StartSession(ctx, &domain.AllocationRequest{
		Assets:          assets,
		TotalInvestment: c.total,
		RiskPreference:  c.risk,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	renderSnapshot(c.out, snap)
	return subcommands.ExitSuccess
}

type snapshotCmd struct {
	remoteFlags
	out io.Writer
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "print the current snapshot of a session" }
func (*snapshotCmd) Usage() string {
	return `simctl snapshot <session-id>
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, &c.remoteFlags, f, func(ctx context.Context, client *grpcadapter.Client, id uuid.UUID) error {
		snap, err := client.GetSnapshot(ctx, id)
		if err != nil {
			return err
		}
		renderSnapshot(c.out, snap)
		return nil
	})
}

// transitionCmd drives one lifecycle command against a session
type transitionCmd struct {
	remoteFlags
	out      io.Writer
	name     string
	synopsis string
}

func newTransitionCmd(name, synopsis string, out io.Writer) *transitionCmd {
	return &transitionCmd{out: out, name: name, synopsis: synopsis}
}

func (c *transitionCmd) Name() string     { return c.name }
func (c *transitionCmd) Synopsis() string { return c.synopsis }
func (c *transitionCmd) Usage() string {
	return fmt.Sprintf("simctl %s <session-id>\n", c.name)
}

func (c *transitionCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *transitionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, &c.remoteFlags, f, func(ctx context.Context, client *grpcadapter.Client, id uuid.UUID) error {
		var (
			snap domain.SessionSnapshot
			err  error
		)
		switch c.name {
		case "pause":
			snap, err = client.PauseSession(ctx, id)
		case "resume":
			snap, err = client.ResumeSession(ctx, id)
		case "reset":
			if err := client.ResetSession(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "session %s terminated\n", id)
			return nil
		default:
			return fmt.Errorf("unknown command %q", c.name)
		}
		if err != nil {
			return err
		}
		renderSnapshot(c.out, snap)
		return nil
	})
}

func withSession(
	ctx context.Context,
	r *remoteFlags,
	f *flag.FlagSet,
	fn func(context.Context, *grpcadapter.Client, uuid.UUID) error,
) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one session id")
		return subcommands.ExitUsageError
	}
	id, err := uuid.Parse(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid session id: %v\n", err)
		return subcommands.ExitUsageError
	}

	client, closeConn, err := r.dial()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeConn()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := fn(ctx, client, id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
