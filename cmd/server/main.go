package main

import (
	"context"
	"log"
	"os"

	"github.com/ebergstrom/daybreak/internal/buildinfo"
	"github.com/ebergstrom/daybreak/internal/server"
	"github.com/ebergstrom/daybreak/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
