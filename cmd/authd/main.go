package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aistudy/authkit/cmd/authd/secret"
	"github.com/aistudy/authkit/cmd/authd/serve"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "authd",
		Usage: "Email, password and social sign-in over HTTP",
		Commands: []*cli.Command{
			serve.Cmd(),
			secret.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
