package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/finanse/internal/app"
	"github.com/dmitrijs2005/finanse/internal/config"
	"github.com/dmitrijs2005/finanse/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx, flagx.Positional(os.Args[1:])); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
