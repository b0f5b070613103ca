package main

import (
	"context"
	"log"
	"os"

	"github.com/ebergstrom/daybreak/internal/buildinfo"
	"github.com/ebergstrom/daybreak/internal/client/cli"
	"github.com/ebergstrom/daybreak/internal/client/config"
	"github.com/ebergstrom/daybreak/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg, logging.NewTextLogger())
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
