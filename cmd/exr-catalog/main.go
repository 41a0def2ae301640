package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"exr-catalog/catalog"

	"github.com/joho/godotenv"
)

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Local development reads overrides from .env; production supplies
	// real environment variables.
	if os.Getenv("GO_ENV") != "production" {
		_ = godotenv.Load()
	}

	var configPath string
	var inputGlobs multiFlag
	var dbPath string
	var reportAddr string
	var metadataDim int
	var channelDim int
	var schemaVersion int
	var deletePersisted bool
	var debug bool
	var timeout time.Duration
	var once bool
	var pollInterval time.Duration

	flag.StringVar(&configPath, "config", "", "YAML config file path.")
	flag.Var(&inputGlobs, "input-glob", "Inspector payload glob(s). Can be repeated.")
	flag.StringVar(&dbPath, "db", "catalog.db", "Catalog database path.")
	flag.StringVar(&reportAddr, "report-addr", "", "Report collector address (tcp). Empty emits JSON lines to stdout.")
	flag.IntVar(&metadataDim, "metadata-dim", 0, "Metadata embedding dimension (0 = default 384).")
	flag.IntVar(&channelDim, "channel-dim", 0, "Channel fingerprint dimension (0 = default 128).")
	flag.IntVar(&schemaVersion, "schema-version", 0, "Schema version stamped on files rows (0 = 1).")
	flag.BoolVar(&deletePersisted, "delete-persisted", false, "Delete payload files after persist + report succeed.")
	flag.BoolVar(&debug, "debug", false, "Enable debug logs.")
	flag.DurationVar(&timeout, "timeout", 0, "Overall timeout for one run (e.g. 30s, 2m).")
	flag.BoolVar(&once, "once", true, "Run once and exit (default true for crontab).")
	flag.DurationVar(&pollInterval, "poll-interval", 5*time.Second, "Polling interval when running with --once=false.")
	flag.Parse()

	visited := map[string]bool{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	// Base config from file (optional)
	fileCfg := &catalog.FileConfig{}
	if configPath != "" {
		cfg, err := catalog.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		fileCfg = cfg
	}

	// Merge: env < config file < CLI flags.
	finalDB := os.Getenv("EXR_CATALOG_DB")
	if fileCfg.DB != "" {
		finalDB = fileCfg.DB
	}
	if visited["db"] || finalDB == "" {
		finalDB = dbPath
	}

	finalReportAddr := os.Getenv("EXR_CATALOG_REPORT_ADDR")
	if fileCfg.ReportAddr != "" {
		finalReportAddr = fileCfg.ReportAddr
	}
	if visited["report-addr"] {
		finalReportAddr = reportAddr
	}

	finalMetadataDim := fileCfg.MetadataDim
	if visited["metadata-dim"] {
		finalMetadataDim = metadataDim
	}
	finalChannelDim := fileCfg.ChannelDim
	if visited["channel-dim"] {
		finalChannelDim = channelDim
	}
	finalSchemaVersion := fileCfg.SchemaVersion
	if visited["schema-version"] {
		finalSchemaVersion = schemaVersion
	}

	finalDebug := fileCfg.Debug
	if visited["debug"] {
		finalDebug = debug
	}

	finalDeletePersisted := false
	if fileCfg.DeletePersisted != nil {
		finalDeletePersisted = *fileCfg.DeletePersisted
	}
	if visited["delete-persisted"] {
		finalDeletePersisted = deletePersisted
	}

	finalInputs := make([]catalog.InputSpec, 0, len(fileCfg.Inputs.Items)+len(inputGlobs))
	for _, in := range fileCfg.Inputs.Items {
		finalInputs = append(finalInputs, catalog.InputSpec{Glob: in.Glob, Label: in.Label, ErrorDir: in.ErrorDir})
	}
	for _, g := range inputGlobs {
		finalInputs = append(finalInputs, catalog.InputSpec{Glob: g})
	}

	if len(finalInputs) == 0 {
		fmt.Fprintln(os.Stderr, "missing inputs (use config.yaml inputs or --input-glob)")
		os.Exit(2)
	}

	runner, err := catalog.NewRunner(catalog.RunnerConfig{
		DBPath:          finalDB,
		Inputs:          finalInputs,
		ReportAddr:      finalReportAddr,
		MetadataDim:     finalMetadataDim,
		ChannelDim:      finalChannelDim,
		SchemaVersion:   finalSchemaVersion,
		DeletePersisted: finalDeletePersisted,
		Debug:           finalDebug,
		Timeout:         timeout,
	})
	if err != nil {
		log.Fatalf("init runner: %v", err)
	}
	defer runner.Close()

	if once {
		if err := runner.RunOnce(); err != nil {
			log.Fatalf("run once: %v", err)
		}
		return
	}

	for {
		if err := runner.RunOnce(); err != nil {
			log.Printf("run once error: %v", err)
		}
		time.Sleep(pollInterval)
	}
}
