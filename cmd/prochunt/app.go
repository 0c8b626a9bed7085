package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fentz26/prochunt/internal/audit"
	"github.com/fentz26/prochunt/internal/baseline"
	"github.com/fentz26/prochunt/internal/collector"
	"github.com/fentz26/prochunt/internal/config"
	"github.com/fentz26/prochunt/internal/connectors/localexec"
	"github.com/fentz26/prochunt/internal/hunt"
	"github.com/fentz26/prochunt/internal/logging"
	"github.com/fentz26/prochunt/internal/power"
	"github.com/fentz26/prochunt/internal/reaper"
	"github.com/fentz26/prochunt/internal/render"
	"github.com/fentz26/prochunt/internal/store"
)

const journalPingTimeout = 2 * time.Second

// app holds the components shared by every command.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	service    *hunt.Service
	controller *reaper.Controller
	repo       *baseline.FileRepository
	store      *store.Store
}

// loadConfig reads the config named by --config, or the default file.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.LoadConfigFromHome()
	} else {
		cfg, err = config.LoadConfig(configPath)
	}
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// appOptions selects the optional parts of an app.
type appOptions struct {
	// journal opens the decision journal. Read-only commands leave it closed
	// so they never create or migrate the database.
	journal bool
	// logSink receives log output instead of stderr, for commands that own
	// the terminal.
	logSink io.Writer
}

// newApp wires the collector, controller, tracker and, when asked, the journal.
func newApp(opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	if opts.logSink != nil {
		logger, err = logging.NewWithWriter(cfg.LoggerConfig(), opts.logSink)
	} else {
		logger, err = logging.New(cfg.LoggerConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cls, err := cfg.Classifier()
	if err != nil {
		return nil, err
	}

	runner := localexec.New()

	coll := collector.New(runner, cls, logger.Named("collector"))

	ctrl := reaper.New(reaper.NewOSProcess(runner), cfg.ReaperConfig(), logger.Named("reaper"))
	ctrl.SetProgress(render.Progress(os.Stdout))

	repo := baseline.NewFileRepository(cfg.Baseline.Path)
	tracker := baseline.NewTracker(repo, power.Detect(runner), coll, logger.Named("baseline"))

	a := &app{
		cfg:        cfg,
		logger:     logger,
		service:    hunt.NewService(coll, ctrl, tracker, logger),
		controller: ctrl,
		repo:       repo,
	}

	if opts.journal && cfg.Journal.Enabled {
		a.openJournal()
	}

	logger.Debug("prochunt initialised",
		zap.String("baseline", cfg.Baseline.Path),
		zap.Bool("journal", a.store != nil),
	)
	return a, nil
}

// openJournal attaches the decision journal. The journal is optional, so
// failures are logged and commands carry on without it.
func (a *app) openJournal() {
	path := a.cfg.Journal.Path
	s, err := store.New(path)
	if err != nil {
		a.logger.Warn("decision journal unavailable", zap.String("path", path), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalPingTimeout)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		a.logger.Warn("decision journal unhealthy", zap.String("path", path), zap.Error(err))
		s.Close()
		return
	}

	a.store = s
	a.service.SetJournal(audit.NewRecorder(s), s)
}

// Close releases the journal and flushes logs.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("journal close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
