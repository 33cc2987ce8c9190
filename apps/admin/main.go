package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/schedule"
	logsvc "github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage"
)

func main() {
	conf := core.NewConfig()

	zapLogger, err := logsvc.NewZap(conf, "admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zapLogger, conf)
	defer logger.Sync()

	// set up DB: migrations are left to the `migrate` command
	ctx := context.Background()
	stores, err := storage.Open(ctx, conf, storage.Options{})
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s store: %v", conf.Database.Engine, err), err)
	}

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)

	rosterSvc := roster.NewService(stores.Roster)
	cli := commandLine{
		out:    os.Stdout,
		db:     stores.SQL,
		roster: rosterSvc,
		svc: schedule.NewService(schedule.ServiceDeps{
			Repo:       stores.Entries,
			Directory:  rosterSvc,
			Validate:   validate,
			Translator: translator,
			Logger:     logger,
		}),
	}

	// start CLI
	err = cli.run(os.Args)
	if cErr := stores.Close(ctx); cErr != nil {
		logger.Error("closing store", cErr)
	}
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
