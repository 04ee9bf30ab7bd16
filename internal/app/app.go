package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"StockScope/internal/analyzer"
	"StockScope/internal/collector"
	"StockScope/internal/config"
	"StockScope/internal/model"
	"StockScope/internal/notify"
	"StockScope/internal/report"
	"StockScope/internal/scheduler"
)

// Options selects the program variant.
type Options struct {
	Charts bool // also emit the PDF chart bundle
}

// App is one configured analysis pipeline.
type App struct {
	cfg      *config.Config
	driver   *analyzer.Driver
	notifier *notify.Notifier
	charts   bool
}

// Run wires configuration, fetcher, driver and exporters together and
// executes either a single batch or the watch-mode loop. It owns process
// lifecycle: logging setup, signal handling and exit codes.
func Run(opts Options) {
	initLogger()
	log.Info().Msg("StockScope starting")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	var fetcher collector.Fetcher
	if cfg.DataSource.Provider == "mock" {
		fetcher = &collector.MockFetcher{Price: 100}
	} else {
		fetcher = collector.NewYahooFetcher(cfg.DataSource.SymbolSuffix, cfg.Proxy, cfg.FetchTimeout(), cfg.CacheTTL())
	}
	log.Info().Str("provider", fetcher.Name()).Int("symbols", len(cfg.Watchlist)).Msg("data source ready")

	a := &App{
		cfg:      cfg,
		driver:   analyzer.NewDriver(collector.NewCollector(fetcher), cfg.Watchlist, cfg.FetchDelay(), opts.Charts),
		notifier: notify.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy),
		charts:   opts.Charts,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule.Cron == "" {
		if err := a.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Warn().Msg("run cancelled before completion")
				return
			}
			log.Fatal().Err(err).Msg("analysis run failed")
		}
		return
	}

	sched := scheduler.New(func() {
		if err := a.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("scheduled run failed")
		}
	})
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron job")
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing analysis now")
		go sched.RunNow()
	}

	if a.notifier.Enabled() {
		go a.notifier.StartPolling(ctx, func(cmd string) string {
			switch cmd {
			case "/report":
				go sched.RunNow()
				return "Generating a fresh analysis report..."
			case "/status":
				return fmt.Sprintf("Watching %d symbols on cron %q", len(cfg.Watchlist), cfg.Schedule.Cron)
			default:
				return ""
			}
		})
	}

	log.Info().Str("cron", cfg.Schedule.Cron).Msg("StockScope is watching, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
}

// RunOnce executes a single fetch-assemble-export cycle. Export faults
// degrade to warnings; only driver failures (cancellation) propagate.
func (a *App) RunOnce(ctx context.Context) error {
	batch, err := a.driver.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(report.FormatSummary(batch))

	if path, err := report.WriteWorkbook(batch, a.cfg.Report.OutDir); err != nil {
		log.Warn().Err(err).Msg("workbook export failed, continuing without it")
	} else {
		log.Info().Str("file", path).Msg("workbook written")
	}

	if a.charts {
		opts := report.ChartOptions{
			OutDir:  a.cfg.Report.OutDir,
			Palette: report.PaletteByName(a.cfg.Report.Theme),
		}
		if path, err := report.WriteChartBundle(batch, opts); err != nil {
			if errors.Is(err, report.ErrNoChartData) {
				log.Warn().Msg("chart bundle skipped: no records with live prices")
			} else {
				log.Warn().Err(err).Msg("chart export failed, continuing without it")
			}
		} else {
			log.Info().Str("file", path).Msg("chart bundle written")
		}
	}

	if a.notifier.Enabled() {
		if err := a.notifier.SendWithRetry(ctx, telegramSummary(batch), 3); err != nil {
			log.Warn().Err(err).Msg("notification failed")
		}
	}
	return nil
}

// telegramSummary compacts the batch into a short HTML message.
func telegramSummary(batch *model.AnalysisBatch) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>NSE Stock Analysis</b> | %s\n\n", batch.GeneratedAt.Format("02 Jan 2006 15:04")))
	for _, r := range batch.Records {
		b.WriteString(fmt.Sprintf("%s: ₹%.2f | overall %.1f%% (%s)\n",
			r.Symbol, r.CurrentPrice, r.PositionAvg, report.RatingZone(r.PositionAvg).Label))
	}
	return b.String()
}

func initLogger() {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
