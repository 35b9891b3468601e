package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/air-afother/osu-table-downloader/internal/catalog"
	"github.com/air-afother/osu-table-downloader/internal/config"
	"github.com/air-afother/osu-table-downloader/internal/download"
	"github.com/air-afother/osu-table-downloader/internal/extract"
	httpclient "github.com/air-afother/osu-table-downloader/internal/http"
	"github.com/air-afother/osu-table-downloader/internal/inventory"
	"github.com/air-afother/osu-table-downloader/internal/logging"
	"github.com/air-afother/osu-table-downloader/internal/model"
	"github.com/air-afother/osu-table-downloader/internal/pipeline"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to config file")
		outputFlag  = flag.String("output", "", "Download directory (overrides config)")
		dbFlag      = flag.String("db", "", "Path to songdata.db (overrides config)")
		tablesFlag  = flag.String("tables", "", "Comma-separated table names to download (overrides config selection)")
		minFlag     = flag.Int("min", -1, "Minimum level for all selected tables (overrides config)")
		maxFlag     = flag.Int("max", -1, "Maximum level for all selected tables (overrides config)")
		extractFlag = flag.Bool("extract", false, "Extract .osz archives after downloading")
		keepFlag    = flag.Bool("keep", false, "Keep .osz archives (disables auto-extract)")
		yesFlag     = flag.Bool("yes", false, "Skip the download confirmation prompt")
		dryRunFlag  = flag.Bool("dry-run", false, "Resolve the worklist without downloading")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *outputFlag != "" {
		settings.DownloadDir = *outputFlag
	}
	if *dbFlag != "" {
		settings.DatabasePath = *dbFlag
	}
	if *tablesFlag != "" {
		names := strings.Split(*tablesFlag, ",")
		for i := range settings.Tables {
			settings.Tables[i].Enabled = false
		}
		for _, name := range names {
			name = strings.TrimSpace(name)
			found := false
			for i := range settings.Tables {
				if settings.Tables[i].Name == name {
					settings.Tables[i].Enabled = true
					found = true
				}
			}
			if !found {
				fmt.Fprintf(os.Stderr, "Unknown table %q. Known tables:\n", name)
				for _, table := range settings.Tables {
					fmt.Fprintf(os.Stderr, "  %s\n", table.Name)
				}
				os.Exit(1)
			}
		}
	}
	for i := range settings.Tables {
		if *minFlag >= 0 {
			settings.Tables[i].MinLevel = *minFlag
		}
		if *maxFlag >= 0 {
			settings.Tables[i].MaxLevel = *maxFlag
		}
	}
	if *extractFlag {
		settings.AutoExtract = true
	}
	if *keepFlag {
		settings.AutoExtract = false
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if len(settings.EnabledTables()) == 0 {
		fmt.Fprintln(os.Stderr, "No tables selected. Enable one in the config or pass -tables.")
		os.Exit(1)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	logger := logging.New(logging.Options{Level: settings.LogLevel})

	store, err := inventory.Open(settings.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening song database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := httpclient.NewClient()
	engine := download.NewEngine(client, settings.DownloadBaseURL, logger)
	o := pipeline.New(store, catalog.NewFetcher(client), engine, extract.New(logger), logger)

	reader := bufio.NewReader(os.Stdin)

	o.Confirm = func(missing int) bool {
		if *dryRunFlag {
			fmt.Printf("%d maps missing.\n[Dry run - not downloading]\n", missing)
			return false
		}
		if *yesFlag {
			fmt.Printf("%d maps missing, downloading...\n", missing)
			return true
		}
		fmt.Printf("%d maps missing. Download now? [y/N] ", missing)
		answer, _ := reader.ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(answer), "y")
	}
	if !settings.AutoExtract {
		o.ExtractPrompt = func() bool {
			if *yesFlag || *dryRunFlag {
				return false
			}
			fmt.Print("Extract downloaded .osz files now? [y/N] ")
			answer, _ := reader.ReadString('\n')
			return strings.EqualFold(strings.TrimSpace(answer), "y")
		}
	}
	o.OnProgress = func(p model.ProgressSnapshot) {
		fmt.Printf("\r%s", p)
	}

	summary, err := o.Run(ctx, pipeline.Request{
		Tables:      settings.EnabledTables(),
		TargetDir:   settings.DownloadDir,
		AutoExtract: settings.AutoExtract,
	})
	fmt.Println()
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("Cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case summary.NothingToDo:
		fmt.Println("All maps in the selected range are already present.")
	case summary.Cancelled:
		if !*dryRunFlag {
			fmt.Println("Cancelled.")
		}
	default:
		fmt.Printf("Complete! %s (%s)\n", model.FormatOutcomes(summary.Outcomes), summary.Elapsed.Round(time.Second))
		if summary.Extracted {
			fmt.Println("Archives extracted.")
		}
	}
}
