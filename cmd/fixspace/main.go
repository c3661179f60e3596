// Command fixspace repairs SLAM trajectory output where the fixed-width
// frame timestamp was concatenated directly onto the first coordinate,
// re-emitting well-formed 8-token TUM lines.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/trajectory.report/internal/fsutil"
	"github.com/banshee-data/trajectory.report/internal/transform"
	"github.com/banshee-data/trajectory.report/internal/version"
)

// Config holds the command-line configuration.
type Config struct {
	InPath      string
	OutPath     string
	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("fixspace %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if cfg.InPath == "" || cfg.OutPath == "" {
		log.Fatal("both -in and -out are required")
	}

	written, err := transform.FixSpacing(fsutil.OSFileSystem{}, cfg.InPath, cfg.OutPath)
	if err != nil {
		log.Fatalf("Spacing repair failed: %v", err)
	}
	log.Printf("Wrote %d repaired lines to %s", written, cfg.OutPath)
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.InPath, "in", "", "Input trajectory file with concatenated timestamps")
	flag.StringVar(&cfg.OutPath, "out", "", "Output TUM trajectory file")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}
