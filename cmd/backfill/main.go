package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/internal/app"
	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/export"
	"github.com/fortuna/faceoff/internal/ingest"
	"github.com/fortuna/faceoff/internal/ledger"
	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/pkg/logger"
)

const (
	appName    = "faceoff-backfill"
	appVersion = "1.0.0"
)

const usage = `usage: backfill <command> [flags]

commands:
  build    ingest seasons into the ledger and write feature rows
  report   print ledger row counts and watermarks
  predict  print feature rows for scheduled games as CSV
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "build":
		err = runBuild(ctx, cfg, args)
	case "report":
		err = runReport(ctx, cfg, args)
	case "predict":
		err = runPredict(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Get().WithField("command", cmd).WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func runBuild(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var (
		seasons    = fs.String("season", "", "Comma-separated seasons to ingest (e.g. 20232024 or 2023-24)")
		allSeasons = fs.Bool("all-seasons", false, "Ingest every configured past season plus the current one")
		mode       = fs.String("mode", cfg.Mode, "Ledger mode: rebuild, incremental or read-only")
		workers    = fs.Int("workers", cfg.Workers, "Teams processed concurrently")
		summarizer = fs.String("summarizer", cfg.Summarizer, "Roster summarizer: pooled or positional")
		label      = fs.String("label", cfg.Label, "Label column: home_away or franchise")
		teams      = fs.String("teams", "", "Comma-separated team abbreviations (default: all)")
		out        = fs.String("out", cfg.OutputDir, "CSV output directory (empty disables)")
		logLevel   = fs.String("log-level", cfg.LogLevel, "Log level")
	)
	fs.Parse(args)

	cfg.Mode = *mode
	cfg.Workers = *workers
	cfg.Summarizer = *summarizer
	cfg.Label = *label
	cfg.OutputDir = *out
	cfg.LogLevel = *logLevel
	cfg.LogFormat = "text"

	switch {
	case *allSeasons:
		cfg.Seasons = append(append([]int{}, config.PastSeasons...), config.CurrentSeason)
	case *seasons != "":
		parsed, err := parseSeasons(*seasons)
		if err != nil {
			return err
		}
		cfg.Seasons = parsed
	}
	if *teams != "" {
		cfg.Teams = splitList(strings.ToUpper(*teams))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.WithComponent("backfill")
	log.Infof("=== %s v%s ===", appName, appVersion)

	a, err := app.Build(ctx, cfg, app.Options{
		Reporter: &consoleReporter{log: log},
		Log:      logger.WithComponent("pipeline"),
		Sinks:    true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := a.Orchestrator.Run(ctx, cfg.Seasons)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"games_ledgered":   sum.GamesLedgered,
		"games_duplicate":  sum.GamesDuplicate,
		"games_skipped":    sum.GamesSkipped,
		"games_failed":     sum.GamesFailed,
		"teams_failed":     sum.TeamsFailed,
		"players_upserted": sum.PlayersUpserted,
		"players_pruned":   sum.PlayersPruned,
		"duration":         sum.Duration.String(),
	}).Info("✓ Backfill completed")
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dsn := fs.String("dsn", cfg.LedgerDSN, "Ledger DSN")
	driver := fs.String("driver", cfg.LedgerDriver, "Ledger driver: sqlite or postgres")
	fs.Parse(args)

	l, err := ledger.Open(ctx, *driver, *dsn, ledger.ModeReadOnly)
	if err != nil {
		return err
	}
	defer l.Close()

	rep, err := l.Report(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-10s %10s  %s\n", "TABLE", "ROWS", "UPDATED")
	for _, t := range rep.Tables {
		updated := "-"
		if t.UpdatedAt != nil {
			updated = t.UpdatedAt.Format(time.RFC3339)
		}
		fmt.Printf("%-10s %10d  %s\n", t.Table, t.Rows, updated)
	}
	return nil
}

func runPredict(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	var (
		date       = fs.String("date", "", "Game date (YYYY-MM-DD)")
		start      = fs.String("start", "", "Start date (YYYY-MM-DD)")
		end        = fs.String("end", "", "End date (YYYY-MM-DD)")
		scope      = fs.String("scope", string(stats.ScopeCareer), "Player history: career, season or game")
		summarizer = fs.String("summarizer", cfg.Summarizer, "Roster summarizer: pooled or positional")
	)
	fs.Parse(args)

	from, to, err := dateRange(*date, *start, *end)
	if err != nil {
		return err
	}
	switch stats.Scope(*scope) {
	case stats.ScopeCareer, stats.ScopeSeason, stats.ScopeGame:
	default:
		return fmt.Errorf("invalid scope %q", *scope)
	}
	cfg.Summarizer = *summarizer
	cfg.LogFormat = "text"
	logger.Init(cfg.LogLevel, cfg.LogFormat).SetOutput(os.Stderr)

	// Prediction never touches the ledger.
	a, err := app.Build(ctx, cfg, app.Options{
		Mode:   ledger.ModeReadOnly,
		Ledger: ledger.NewMemory(ledger.ModeReadOnly),
		Log:    logger.WithComponent("predict"),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.Orchestrator.Predict(ctx, from, to, stats.Scope(*scope))
	if err != nil {
		return err
	}
	return export.NewWriterSink(os.Stdout, a.Orchestrator.Headers()).WriteAll(ctx, rows)
}

func dateRange(date, startStr, endStr string) (time.Time, time.Time, error) {
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date: %w", err)
		}
		return d, d, nil
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("specify --date or --start/--end")
	}
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date is before start date")
	}
	return start, end, nil
}

func parseSeasons(list string) ([]int, error) {
	var out []int
	for _, s := range splitList(list) {
		season, err := parseSeason(s)
		if err != nil {
			return nil, err
		}
		out = append(out, season)
	}
	return out, nil
}

// parseSeason accepts 20232024 or 2023-24.
func parseSeason(s string) (int, error) {
	parts := strings.Split(s, "-")
	if len(parts) == 2 {
		startYear, err := strconv.Atoi(parts[0])
		if err != nil || len(parts[0]) != 4 {
			return 0, fmt.Errorf("invalid season %q", s)
		}
		return startYear*10000 + startYear + 1, nil
	}
	season, err := strconv.Atoi(s)
	if err != nil || len(s) != 8 || season%10000 != season/10000+1 {
		return 0, fmt.Errorf("invalid season %q", s)
	}
	return season, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type consoleReporter struct {
	log *logrus.Entry
}

var _ ingest.Reporter = (*consoleReporter)(nil)

func (c *consoleReporter) OnRunStart(runID string, seasons []int) {
	c.log.Infof("Starting run %s for seasons %v", runID, seasons)
}

func (c *consoleReporter) OnSeasonStart(season int, index int, total int) {
	c.log.Infof("[%d/%d] Season %d", index+1, total, season)
}

func (c *consoleReporter) OnTeamStart(season int, team string, index int, total int) {
	c.log.Infof("  [%d/%d] %s %d", index+1, total, team, season)
}

func (c *consoleReporter) OnGameProcessed(season int, gameID int) {
	c.log.Debugf("Processed game %d", gameID)
}

func (c *consoleReporter) OnProgress(message string, current int, total int) {
	c.log.Infof("Progress: %s (%d/%d)", message, current, total)
}

func (c *consoleReporter) OnRunComplete(sum ingest.Summary) {
	c.log.Infof("Run complete: %d games ledgered", sum.GamesLedgered)
}

func (c *consoleReporter) OnRunError(err error) {
	c.log.Errorf("Run error: %v", err)
}
