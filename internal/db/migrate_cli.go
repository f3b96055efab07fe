package db

import (
	"fmt"
	"io"
	"io/fs"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand against the database at
// dbPath, writing human-readable output to w.
func RunMigrateCommand(w io.Writer, args []string, dbPath string) error {
	if len(args) < 1 {
		PrintMigrateHelp(w)
		return fmt.Errorf("missing migrate action")
	}

	fsys, err := MigrationsFS()
	if err != nil {
		return err
	}

	// Open without migrating: the action decides what happens to the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	switch action := args[0]; action {
	case "up":
		if err := database.MigrateUp(fsys); err != nil {
			return err
		}
		fmt.Fprintln(w, "All migrations applied")
	case "down":
		if err := database.MigrateDown(fsys); err != nil {
			return err
		}
		fmt.Fprintln(w, "Rolled back one migration")
	case "to":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate to <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version number: %s", args[1])
		}
		if err := database.MigrateTo(fsys, uint(version)); err != nil {
			return err
		}
		fmt.Fprintf(w, "Migrated to version %d\n", version)
	case "status":
		// handled below
	case "help":
		PrintMigrateHelp(w)
		return nil
	default:
		PrintMigrateHelp(w)
		return fmt.Errorf("unknown migrate action: %s", action)
	}

	return printMigrateStatus(w, database, fsys)
}

func printMigrateStatus(w io.Writer, database *DB, fsys fs.FS) error {
	version, dirty, err := database.MigrateVersion(fsys)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	latest, err := LatestMigrationVersion(fsys)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== Migration Status ===")
	fmt.Fprintf(w, "Current version: %d\n", version)
	fmt.Fprintf(w, "Latest available: %d\n", latest)
	fmt.Fprintf(w, "Dirty: %v\n", dirty)
	switch {
	case dirty:
		fmt.Fprintln(w, "Database is in a dirty state. A migration failed mid-execution; inspect it before retrying.")
	case version < latest:
		fmt.Fprintf(w, "Database is %d version(s) behind. Run 'submovements migrate up' to update.\n", latest-version)
	default:
		fmt.Fprintln(w, "Database is up to date")
	}
	return nil
}

// PrintMigrateHelp writes usage for the migrate subcommand.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: submovements migrate <command> [-db path]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  up          Apply all pending migrations")
	fmt.Fprintln(w, "  down        Roll back one migration")
	fmt.Fprintln(w, "  to <N>      Migrate to version N")
	fmt.Fprintln(w, "  status      Show the current migration version")
	fmt.Fprintln(w, "  help        Show this help message")
}
