// Command trajserver serves the evaluation run database over HTTP: JSON run
// listings, rendered charts and the admin debug surface. It also carries the
// migrate subcommand for managing the database schema:
//
//	trajserver migrate up|down|status|force <version> [-db path]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/banshee-data/trajectory.report/internal/report"
	"github.com/banshee-data/trajectory.report/internal/rundb"
	"github.com/banshee-data/trajectory.report/internal/version"
)

// Config holds the command-line configuration.
type Config struct {
	ListenAddr    string
	DBPath        string
	MigrationsDir string
	ShowVersion   bool
}

func main() {
	// The migrate subcommand takes over before flag parsing, as it has its
	// own argument shape.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrateCommand(os.Args[2:])
		return
	}

	cfg := parseFlags(os.Args[1:])

	if cfg.ShowVersion {
		fmt.Printf("trajserver %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	db, err := rundb.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer db.Close()
	if err := db.MigrateUp(cfg.MigrationsDir); err != nil {
		log.Fatalf("Failed to migrate run database: %v", err)
	}

	ws := report.NewWebServer(report.WebServerConfig{
		Address: cfg.ListenAddr,
		DB:      db,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ws.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func parseFlags(args []string) Config {
	cfg := Config{}

	flags := flag.NewFlagSet("trajserver", flag.ExitOnError)
	flags.StringVar(&cfg.ListenAddr, "listen", ":8080", "HTTP listen address")
	flags.StringVar(&cfg.DBPath, "db", "trajectory.db", "Run database path")
	flags.StringVar(&cfg.MigrationsDir, "migrations", "db/migrations", "Migrations directory")
	flags.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flags.Parse(args)
	return cfg
}

// runMigrateCommand dispatches the migrate subcommand actions.
func runMigrateCommand(args []string) {
	flags := flag.NewFlagSet("trajserver migrate", flag.ExitOnError)
	dbPath := flags.String("db", "trajectory.db", "Run database path")
	migrationsDir := flags.String("migrations", "db/migrations", "Migrations directory")

	if len(args) < 1 {
		printMigrateHelp()
		os.Exit(1)
	}
	action := args[0]
	flags.Parse(args[1:])

	db, err := rundb.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open run database: %v", err)
	}
	defer db.Close()

	switch action {
	case "up":
		if err := db.MigrateUp(*migrationsDir); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("All migrations applied successfully")

	case "down":
		if err := db.MigrateDown(*migrationsDir); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Rolled back one migration")

	case "status":
		status, err := db.MigrationStatus(*migrationsDir)
		if err != nil {
			log.Fatalf("Failed to get migration status: %v", err)
		}
		for k, v := range status {
			fmt.Printf("%s: %v\n", k, v)
		}

	case "force":
		if flags.NArg() < 1 {
			log.Fatal("Usage: trajserver migrate force <version_number>")
		}
		v, err := strconv.Atoi(flags.Arg(0))
		if err != nil {
			log.Fatalf("Invalid version number %q: %v", flags.Arg(0), err)
		}
		if err := db.MigrateForce(*migrationsDir, v); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		log.Printf("Forced migration version to %d", v)

	case "help":
		printMigrateHelp()

	default:
		fmt.Printf("Unknown migrate action: %s\n\n", action)
		printMigrateHelp()
		os.Exit(1)
	}
}

func printMigrateHelp() {
	fmt.Println(`Usage: trajserver migrate <action> [flags]

Actions:
  up              Apply all pending migrations
  down            Roll back the most recent migration
  status          Show the current migration state
  force <n>       Force the migration version (recovery only)
  help            Show this help

Flags:
  -db <path>          Run database path (default "trajectory.db")
  -migrations <dir>   Migrations directory (default "db/migrations")`)
}
