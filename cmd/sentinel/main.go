package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"RetentionSentinel/internal/collector"
	"RetentionSentinel/internal/config"
	"RetentionSentinel/internal/export"
	"RetentionSentinel/internal/goals"
	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/notifier"
	"RetentionSentinel/internal/recorder"
	"RetentionSentinel/internal/report"
	"RetentionSentinel/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "compute the reference month, export the tables and exit")
	month := flag.String("month", "", "reference month YYYY-MM (default: current month)")
	backfillFrom := flag.String("backfill-from", "", "record every month from YYYY-MM to the reference month and exit")
	setGoal := flag.String("set-goal", "", "set a goal COUNTRY:SEGMENT:N and exit")
	exportDir := flag.String("export", "", "export directory (overrides export.dir)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] RetentionSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *month != "" {
		cfg.Report.ReferenceMonth = *month
	}
	if *exportDir != "" {
		cfg.Export.Dir = *exportDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Goal store
	store, err := goals.NewStore(cfg.Goals.StateFile)
	if err != nil {
		log.Fatalf("[FATAL] init goal store: %v", err)
	}
	store.Clock = time.Now

	if *setGoal != "" {
		country, segment, target, err := parseGoal(*setGoal)
		if err != nil {
			log.Fatalf("[FATAL] -set-goal: %v", err)
		}
		g, err := store.Set(country, segment, target)
		if err != nil {
			log.Fatalf("[FATAL] set goal: %v", err)
		}
		log.Printf("[INFO] goal set: %s %s = %d", g.Country, g.Segment, g.Target)
		return
	}

	// Init source
	source, err := newSource(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init data source: %v", err)
	}
	log.Printf("[INFO] data source: %s", source.Name())
	if c, ok := source.(io.Closer); ok {
		defer c.Close()
	}
	col := collector.NewCollector(source, collector.Filter{
		ExcludedOrderStatuses:   cfg.Filters.ExcludedOrderStatuses,
		ExcludedPaymentStatuses: cfg.Filters.ExcludedPaymentStatuses,
		ExcludedChannels:        cfg.Filters.ExcludedChannels,
	})

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] telegram not configured, notifications disabled")
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	facade := report.NewFacade(cfg.Report.RevenueWindowMonths, report.NewSnapshotCache())
	sched := scheduler.NewScheduler(ctx, col, facade, store, sender, rec, time.Now)
	sched.WindowMonths = cfg.Report.WindowMonths
	sched.Reference, _ = cfg.ReferenceMonth()
	sched.Progress = os.Stderr
	ref := sched.ReferenceMonth()

	switch {
	case *backfillFrom != "":
		from, err := model.ParseYearMonth(*backfillFrom)
		if err != nil {
			log.Fatalf("[FATAL] -backfill-from: %v", err)
		}
		n, err := sched.Backfill(ctx, from, ref)
		if err != nil {
			log.Fatalf("[FATAL] backfill: %v", err)
		}
		log.Printf("[INFO] backfilled %d months (%s..%s)", n, from, ref)
		return

	case *once:
		res, err := sched.RunNow(ctx, "once", ref)
		if err != nil {
			log.Fatalf("[FATAL] run: %v", err)
		}
		paths, err := export.Tables(cfg.Export.Dir, time.Now(), res.Tables()...)
		if err != nil {
			log.Fatalf("[FATAL] export: %v", err)
		}
		for _, p := range paths {
			log.Printf("[INFO] exported %s", p)
		}
		fmt.Print(stripTags(notifier.FormatRetentionDigest(recorder.ScopeAll, res.Snapshot, res.Previous)))
		return
	}

	// Init scheduler
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.MonthlyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, loading order history now")
		go func() {
			if _, err := sched.Refresh(ctx); err != nil {
				log.Printf("[ERROR] initial load: %v", err)
			}
		}()
	}

	log.Println("[INFO] RetentionSentinel is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

func newSource(cfg *config.Config) (collector.Source, error) {
	switch cfg.DataSource.Kind {
	case config.KindMySQL:
		return collector.NewMySQLSource(cfg.DataSource.DSN, cfg.DataSource.Table)
	case config.KindPostgres:
		return collector.NewPostgresSource(cfg.DataSource.DSN, cfg.DataSource.Table)
	default:
		return collector.NewCSVSource(cfg.DataSource.Path), nil
	}
}

// parseGoal parses COUNTRY:SEGMENT:N.
func parseGoal(v string) (country, segment string, target int, err error) {
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("expected COUNTRY:SEGMENT:N, got %q", v)
	}
	target, err = strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return "", "", 0, fmt.Errorf("target %q: %w", parts[2], err)
	}
	return parts[0], parts[1], target, nil
}

func stripTags(s string) string {
	r := strings.NewReplacer("<b>", "", "</b>", "")
	return r.Replace(s)
}
