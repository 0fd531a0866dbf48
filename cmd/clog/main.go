package main

import (
	"os"

	"github.com/ariel-frischer/clog/internal/cli"
	clerrors "github.com/ariel-frischer/clog/internal/errors"
)

func main() {
	app := cli.NewApp()
	if err := app.Execute(os.Args[1:]); err != nil {
		clerrors.NewReporter(app.Policy()).ReportAndExit(err)
	}
}
