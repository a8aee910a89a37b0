package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/HannJia/novel-ai-studio-sub000/internal/agent"
	"github.com/HannJia/novel-ai-studio-sub000/internal/config"
	"github.com/HannJia/novel-ai-studio-sub000/internal/review"
	"github.com/HannJia/novel-ai-studio-sub000/internal/rules"
	"github.com/HannJia/novel-ai-studio-sub000/internal/storage"
)

func main() {
	bundlePath := flag.String("bundle", "", "path to a YAML book bundle")
	chapterID := flag.String("chapter", "", "review a single chapter by id (default: whole book)")
	levelsFlag := flag.String("levels", "", "comma-separated levels to run (error,warning,suggestion,info)")
	listRules := flag.Bool("rules", false, "list registered rules and exit")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := run(*bundlePath, *chapterID, *levelsFlag, *listRules, *asJSON, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(bundlePath, chapterID, levelsFlag string, listRules, asJSON bool, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gen := buildGenerator(cfg, logger)
	registry := rules.NewRegistry(gen)

	if listRules {
		return printRules(registry, asJSON)
	}

	if bundlePath == "" {
		return fmt.Errorf("a -bundle file is required")
	}

	store, book, err := storage.LoadBundle(bundlePath)
	if err != nil {
		return err
	}

	if gen == nil {
		disableAIRules(registry, logger)
	}

	orch := review.NewOrchestrator(store, store, registry, review.WithLogger(logger))

	levels, err := parseLevels(levelsFlag)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var report *review.Report
	if chapterID != "" {
		report, err = orch.ReviewChapter(ctx, book.ID, chapterID, levels...)
	} else {
		report, err = orch.ReviewBook(ctx, book.ID, levels...)
	}
	if err != nil {
		return err
	}

	return printReport(report, asJSON)
}

func buildGenerator(cfg *config.Config, logger *slog.Logger) agent.Generator {
	if cfg.AI.APIKey == "" {
		return nil
	}
	return agent.NewClient(cfg.AI.APIKey,
		agent.WithAPIConfig(cfg.AI.BaseURL, cfg.AI.Model),
		agent.WithTimeout(cfg.AI.Timeout),
		agent.WithRateLimit(cfg.AI.RateLimit.RequestsPerMinute, cfg.AI.RateLimit.BurstSize),
		agent.WithLogger(logger))
}

// disableAIRules turns off every rule that needs the generation capability
// when there is no API key to back it.
func disableAIRules(registry *review.Registry, logger *slog.Logger) {
	for _, rule := range registry.All() {
		if !rule.RequiresAI() {
			continue
		}
		if toggler, ok := rule.(interface{ SetEnabled(bool) }); ok {
			toggler.SetEnabled(false)
			logger.Info("AI rule disabled, no API key configured", "rule", rule.Name())
		}
	}
}

func parseLevels(raw string) ([]review.Level, error) {
	if raw == "" {
		return nil, nil
	}
	var levels []review.Level
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level := review.Level(part)
		if !level.Valid() {
			return nil, fmt.Errorf("unknown level %q", part)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func printRules(registry *review.Registry, asJSON bool) error {
	descriptors := registry.Describe()
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(descriptors)
	}
	for _, d := range descriptors {
		ai := ""
		if d.RequiresAI {
			ai = " [ai]"
		}
		fmt.Printf("%-24s %-10s priority=%-4d%s %s\n", d.Name, d.Level, d.Priority, ai, d.Description)
	}
	return nil
}

func printReport(report *review.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("run %s: %d issue(s) across %d chapter(s) in %s\n",
		report.RunID, report.Total, len(report.ChapterIDs), report.Duration.Round(time.Millisecond))
	for _, level := range review.Levels() {
		if n := report.ByLevel[level]; n > 0 {
			fmt.Printf("  %-10s %d\n", level, n)
		}
	}
	for _, issue := range report.Issues {
		fmt.Printf("\n[%s] %s (chapter %d, confidence %.2f)\n", issue.Level, issue.Title, issue.ChapterOrder, issue.Confidence)
		fmt.Printf("  %s\n", issue.Description)
		if issue.Suggestion != "" {
			fmt.Printf("  suggestion: %s\n", issue.Suggestion)
		}
	}
	return nil
}
