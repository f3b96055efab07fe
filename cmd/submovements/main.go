// Command submovements segments the cursor trajectories of a pointing study
// into rapid and slow submovements, writes the segment table and optional
// plots, and records the run in a results database.
//
// Usage:
//
//	submovements -positions positions.csv [-config tuning.json] [-db results.db] [-outdir out]
//	submovements migrate <up|down|to N|status> [-db results.db]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/lakfel/fittsStudy/internal/db"
	"github.com/lakfel/fittsStudy/internal/monitoring"
	"github.com/lakfel/fittsStudy/internal/version"
)

const defaultDBPath = "submovements.db"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:]); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
	if opts.showVersion {
		fmt.Println(version.String("submovements"))
		return
	}
	monitoring.SetVerbose(opts.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("%v", err)
	}
}

// runMigrate handles "submovements migrate <action> [args] [-db path]". The
// action comes first, so flags are parsed from whatever follows it.
func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "Results database to migrate")

	positional := args
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			positional = args[:i]
			if err := fs.Parse(args[i:]); err != nil {
				return err
			}
			break
		}
	}
	positional = append(slices.Clone(positional), fs.Args()...)
	return db.RunMigrateCommand(os.Stdout, positional, *dbPath)
}
