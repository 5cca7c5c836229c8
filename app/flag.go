package app

import "github.com/urfave/cli/v2"

var (
	addressFlag = &cli.StringFlag{
		Name:    "address",
		Aliases: []string{"a"},
		Usage:   "Address of the cats daemon (default: 127.0.0.1:7717)",
	}

	storeFlag = &cli.StringFlag{
		Name:  "store",
		Usage: "Storage backend used by the daemon: bolt or sqlite",
	}

	dbFlag = &cli.StringFlag{
		Name:  "db",
		Usage: "Path to the database file used by the daemon",
	}

	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log at debug level and echo log records to stderr",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	sortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "Sort timers by 'id' or 'name'",
		Value: sortByID,
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, json or yaml",
		Value:   formatTable,
	}

	nameFlag = &cli.StringFlag{
		Name:    "name",
		Aliases: []string{"n"},
		Usage:   "Name of the timer. You will be prompted for one if omitted",
	}

	iconFlag = &cli.IntFlag{
		Name:    "icon",
		Aliases: []string{"i"},
		Usage:   "Index into the icon catalog (see 'cats icons')",
	}

	workFlag = &cli.StringFlag{
		Name:    "work",
		Aliases: []string{"w"},
		Usage:   "Work duration, e.g. '25m' or '25' for minutes (default: timer.default_work)",
	}

	breakFlag = &cli.StringFlag{
		Name:    "break",
		Aliases: []string{"b"},
		Usage:   "Break duration, e.g. '5m' or '5' for minutes (default: timer.default_break)",
	}

	sinceFlag = &cli.StringFlag{
		Name:  "since",
		Usage: "Only show stages that ended after this date (e.g. 'yesterday', '3 days ago')",
	}

	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Reporting period: all-time, today, yesterday, 7days, 14days or 30days",
		Value:   "7days",
	}

	timerFlag = &cli.Uint64Flag{
		Name:    "timer",
		Aliases: []string{"t"},
		Usage:   "Only show stages of the timer with this id",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the report as JSON",
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Do not ask for confirmation",
	}
)
