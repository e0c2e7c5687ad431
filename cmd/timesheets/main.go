package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-timesheets-client/internal/app"
	"github.com/jrsteele09/go-timesheets-client/internal/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			fmt.Fprintln(os.Stderr, exit.msg)
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		displayAppname(c.GetAppName())
		usage()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.FromConfig(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Start(ctx)

	return dispatch(ctx, &cli{app: a, out: os.Stdout}, args)
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Println(`usage: timesheets <command> [subcommand] [flags]

  login         -email -password
  register      -email -password [-name] [-tz]
  logout
  whoami
  projects      list | create -name [-description] [-color]
  entries       list [-from] [-to] [-projects 1,2] | create -project -start -minutes [-desc] [-billable] [-rate] | delete -id
  report        summary -from -to [-projects] | export -from -to [-format csv|pdf] | exports
  reminders     list | create -label -cron [-channel] | toggle -id | delete -id
  integrations  list | upsert -provider -token [-details]

The password may also be given in TIMESHEETS_PASSWORD.`)
}
