package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tellbrandz/tbz/internal/buildinfo"
	"github.com/tellbrandz/tbz/internal/client/cli"
	"github.com/tellbrandz/tbz/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
