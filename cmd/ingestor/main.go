// Command ingestor is the interactive CLI entry point: it prompts for a
// path, a source, and a side, then dispatches the path's files through the
// ingestion pipeline and prints a run summary. Grounded on the teacher's
// cmd/server/main.go signal-handling shape, adapted from an HTTP server's
// listen/shutdown lifecycle to a one-shot batch run with a Ctrl-C handler
// that cancels in-flight work and still reports partial statistics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/lattice-data/ingestor/internal/batch"
	"github.com/lattice-data/ingestor/internal/checkpoint"
	"github.com/lattice-data/ingestor/internal/config"
	"github.com/lattice-data/ingestor/internal/dedup"
	"github.com/lattice-data/ingestor/internal/dispatcher"
	"github.com/lattice-data/ingestor/internal/logging"
	"github.com/lattice-data/ingestor/internal/storage"
	"github.com/lattice-data/ingestor/internal/storagepipeline"
)

const (
	exitSuccess     = 0
	exitPathMissing = 1
	exitUnhandled   = 2
)

func main() {
	root := &cobra.Command{
		Use:           "ingestor",
		Short:         "Parallel file ingestion and content-indexing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(ingestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUnhandled)
	}
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [path]",
		Short: "Ingest a file or directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) > 0 {
				target = args[0]
			}
			os.Exit(runIngest(target))
			return nil
		},
	}
}

// runIngest drives the four interactive prompts, wires the pipeline, and
// returns the process exit code per spec.md §6.
func runIngest(target string) int {
	log := logging.New()

	path, err := promptPath(target)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitPathMissing
	}

	cfg := config.Load()
	log, actionLog, err := log.WithActionLog("logs")
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: action log disabled:", err)
	}
	if actionLog != nil {
		defer actionLog.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Error("connect to database failed", "error", err)
		return exitUnhandled
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		log.Error("schema migration failed", "error", err)
		return exitUnhandled
	}

	sourceID, sideID, err := promptSourceAndSide(ctx, db)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUnhandled
	}

	if !promptConfirm(path) {
		fmt.Println("aborted")
		return exitSuccess
	}

	buffers := batch.NewBuffers(cfg.BatchSize, db.Words(), log)
	defer func() {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer drainCancel()
		if err := buffers.DrainAll(drainCtx); err != nil {
			log.Warn("final buffer drain failed", "error", err)
		}
	}()

	idx := dedup.New(db.Hashes())
	pipeline := storagepipeline.New(idx, db.Words(), db.Paths(), db.Contents(), db.Titles(), buffers.WordPaths, log)

	governor := dispatcher.NewGovernor(cfg.CircuitWindow, cfg.CircuitThreshold)
	disp := dispatcher.New(pipeline, sourceID, sideID, cfg.IOWorkers(), cfg.CPUWorkers(), cfg.PerTaskTimeout, governor, log)

	mgr := checkpoint.NewManager(cfg.CheckpointDir)
	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	cp, err := mgr.Create(runID)
	if err != nil {
		log.Warn("checkpoint disabled", "error", err)
	}

	tasks, err := collectTasks(path, db, cp)
	if err != nil {
		log.Error("walk input path failed", "error", err)
		return exitUnhandled
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down, finishing in-flight tasks and reporting partial statistics")
		cancel()
	}()

	outcomes := disp.Run(ctx, tasks)
	if cp != nil {
		for _, o := range outcomes {
			if !o.IsError {
				_ = cp.MarkProcessed(o.Task.Path)
			}
		}
	}

	printSummary(governor.Snapshot(), outcomes)
	return exitSuccess
}

// promptPath resolves the target argument, or prompts for one, and
// confirms it exists on disk.
func promptPath(target string) (string, error) {
	if target == "" {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Path to ingest").
				Value(&target).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("path is required")
					}
					return nil
				}),
		))
		if err := form.Run(); err != nil {
			return "", err
		}
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("path not found: %s", target)
	}
	return target, nil
}

// promptSourceAndSide implements the menu: list / search / create /
// direct-name flow for both Source and Side, each with importance clamped
// to [0,1] and defaulted to 0.5.
func promptSourceAndSide(ctx context.Context, db *storage.DB) (int64, int64, error) {
	sourceID, err := promptProvenance(ctx, "Source", func(search string, limit int) ([]menuOption, error) {
		sources, err := db.Sources().List(ctx, search, limit)
		if err != nil {
			return nil, err
		}
		opts := make([]menuOption, len(sources))
		for i, s := range sources {
			opts[i] = menuOption{id: s.ID, label: s.Name}
		}
		return opts, nil
	}, func(name string, importance float64) (int64, error) {
		return db.Sources().GetOrCreate(ctx, name, "", "", importance)
	})
	if err != nil {
		return 0, 0, err
	}

	sideID, err := promptProvenance(ctx, "Side", func(search string, limit int) ([]menuOption, error) {
		sides, err := db.Sides().List(ctx, search, limit)
		if err != nil {
			return nil, err
		}
		opts := make([]menuOption, len(sides))
		for i, s := range sides {
			opts[i] = menuOption{id: s.ID, label: s.Name}
		}
		return opts, nil
	}, func(name string, importance float64) (int64, error) {
		return db.Sides().GetOrCreate(ctx, name, importance)
	})
	if err != nil {
		return 0, 0, err
	}
	return sourceID, sideID, nil
}

type menuOption struct {
	id    int64
	label string
}

// promptProvenance runs the list/search/create/direct-name menu common to
// both Source and Side selection.
func promptProvenance(ctx context.Context, label string, list func(search string, limit int) ([]menuOption, error), create func(name string, importance float64) (int64, error)) (int64, error) {
	var mode string
	modeForm := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(fmt.Sprintf("%s selection", label)).
			Options(
				huh.NewOption("List existing", "list"),
				huh.NewOption("Search by name", "search"),
				huh.NewOption("Create new", "create"),
				huh.NewOption("Enter name directly", "direct"),
			).
			Value(&mode),
	))
	if err := modeForm.Run(); err != nil {
		return 0, err
	}

	switch mode {
	case "list", "search":
		search := ""
		if mode == "search" {
			searchForm := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title(fmt.Sprintf("Search %s name", label)).Value(&search),
			))
			if err := searchForm.Run(); err != nil {
				return 0, err
			}
		}
		opts, err := list(search, 50)
		if err != nil {
			return 0, err
		}
		if len(opts) == 0 {
			return promptCreate(label, create)
		}
		var chosen int64
		selectOpts := make([]huh.Option[int64], len(opts))
		for i, o := range opts {
			selectOpts[i] = huh.NewOption(o.label, o.id)
		}
		pickForm := huh.NewForm(huh.NewGroup(
			huh.NewSelect[int64]().Title(fmt.Sprintf("Choose %s", label)).Options(selectOpts...).Value(&chosen),
		))
		if err := pickForm.Run(); err != nil {
			return 0, err
		}
		return chosen, nil
	case "create":
		return promptCreate(label, create)
	default: // "direct"
		var name string
		nameForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title(fmt.Sprintf("%s name", label)).Value(&name),
		))
		if err := nameForm.Run(); err != nil {
			return 0, err
		}
		return create(name, 0.5)
	}
}

func promptCreate(label string, create func(name string, importance float64) (int64, error)) (int64, error) {
	var name string
	importanceStr := "0.5"
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(fmt.Sprintf("New %s name", label)).Value(&name),
		huh.NewInput().Title("Importance [0,1]").Value(&importanceStr),
	))
	if err := form.Run(); err != nil {
		return 0, err
	}
	importance, err := strconv.ParseFloat(importanceStr, 64)
	if err != nil {
		importance = 0.5
	}
	return create(name, clampImportance(importance))
}

func clampImportance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// promptConfirm implements the Y/n confirmation, default Y.
func promptConfirm(path string) bool {
	confirm := true
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Ingest %s?", path)).
			Value(&confirm).
			Affirmative("Yes").
			Negative("No"),
	))
	if err := form.Run(); err != nil {
		return false
	}
	return confirm
}

// collectTasks walks path (a single file or a directory tree) into dispatch
// tasks, skipping files the checkpoint already marked processed.
func collectTasks(path string, db *storage.DB, cp *checkpoint.Checkpoint) ([]dispatcher.Task, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var tasks []dispatcher.Task
	add := func(p string, size int64) {
		if cp != nil && cp.IsProcessed(p) {
			return
		}
		tasks = append(tasks, dispatcher.Task{Path: p, Name: filepath.Base(p), Size: size})
	}

	if !info.IsDir() {
		add(path, info.Size())
		return tasks, nil
	}

	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		add(p, fi.Size())
		return nil
	})
	return tasks, err
}

// printSummary prints totals, success rate, and the ten most frequent file
// types by count, per spec.md §7's user-visible behavior requirement.
func printSummary(stats dispatcher.Stats, outcomes []dispatcher.Outcome) {
	byType := make(map[string]int)
	for _, o := range outcomes {
		byType[extOf(o.Task.Name)]++
	}

	fmt.Println()
	fmt.Println("=== Ingestion summary ===")
	fmt.Printf("total=%d completed=%d failed=%d duplicates=%d\n", stats.Total, stats.Completed, stats.Failed, stats.Duplicates)
	fmt.Printf("original_files=%d extracted_files=%d\n", stats.OriginalFiles, stats.ExtractedFiles)
	if stats.Total > 0 {
		fmt.Printf("success_rate=%.1f%%\n", 100*float64(stats.Completed)/float64(stats.Total))
	}
	if !stats.StartTime.IsZero() && !stats.EndTime.IsZero() {
		fmt.Printf("elapsed=%s\n", stats.EndTime.Sub(stats.StartTime))
	}
	exts := make([]string, 0, len(byType))
	for ext := range byType {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if byType[exts[i]] != byType[exts[j]] {
			return byType[exts[i]] > byType[exts[j]]
		}
		return exts[i] < exts[j]
	})
	if len(exts) > 10 {
		exts = exts[:10]
	}
	fmt.Println("file types:")
	for _, ext := range exts {
		fmt.Printf("  %s: %d\n", ext, byType[ext])
	}
}

func extOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return "(none)"
	}
	return ext
}
