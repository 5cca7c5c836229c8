package main

import (
	"os"

	"github.com/kotleni/cats/app"
	"github.com/kotleni/cats/internal/osutil"
	"github.com/kotleni/cats/report"
)

func run(args []string) error {
	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		report.Error(err)
		os.Exit(int(osutil.ExitError))
	}
}
