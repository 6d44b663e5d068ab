package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/pagekeeper/internal/common"
	"github.com/dmitrijs2005/pagekeeper/internal/server"
	"github.com/dmitrijs2005/pagekeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig(os.Args[1:])

	passphrase, err := config.ReadPassphrase(os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := config.LoadSecrets(ctx, cfg, passphrase); err != nil {
		if errors.Is(err, common.ErrIncorrectConfigKey) {
			fmt.Fprintln(os.Stderr, "Error: Incorrect encryption key")
			os.Exit(1)
		}
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
