package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ardnew/jmes/cli"
	"github.com/ardnew/jmes/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		log.Error("run failed", log.Err(err))
		os.Exit(1)
	}
}
