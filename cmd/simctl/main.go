package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&runCmd{out: os.Stdout}, "local")

	commander.Register(&startCmd{out: os.Stdout}, "remote")
	commander.Register(&snapshotCmd{out: os.Stdout}, "remote")
	commander.Register(newTransitionCmd("pause", "pause a running session", os.Stdout), "remote")
	commander.Register(newTransitionCmd("resume", "resume a paused session", os.Stdout), "remote")
	commander.Register(newTransitionCmd("reset", "terminate a session and discard its state", os.Stdout), "remote")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
