package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phoaar/cacv-bulletin-automation/config"
	v1 "github.com/phoaar/cacv-bulletin-automation/controllers/v1"
	"github.com/phoaar/cacv-bulletin-automation/db"
	"github.com/phoaar/cacv-bulletin-automation/logger"
	"github.com/phoaar/cacv-bulletin-automation/notify"
	"github.com/phoaar/cacv-bulletin-automation/pdf"
	"github.com/phoaar/cacv-bulletin-automation/publish"
	"github.com/phoaar/cacv-bulletin-automation/service"
	"github.com/phoaar/cacv-bulletin-automation/translate"
	"github.com/phoaar/cacv-bulletin-automation/utils"
)

var (
	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bulletin",
	Short: "Build the CACV weekly bulletin from the Google Sheet",
	Long: `bulletin reads the bulletin spreadsheet, translates Chinese content,
renders the web, print and booklet editions, prints PDFs, emails the
maintainers and publishes the web edition to WordPress.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the regenerate webhook and the generated bulletins",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context) error {
	svc, closeFn, _, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	sum, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("✅ Done", zap.String("status", sum.Status), zap.String("web", sum.Files.Web), zap.Int("issues", len(sum.Issues)))
	return nil
}

func serve(ctx context.Context) error {
	if cfg.WebhookToken == "" {
		return fmt.Errorf("%w: WEBHOOK_TOKEN", config.ErrMissingEnv)
	}
	svc, closeFn, history, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	var lister v1.RunLister
	if history != nil {
		lister = history
	}
	ctl := v1.NewBulletinController(svc, lister, cfg.OutputDir, cfg.WebhookToken, log)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           v1.NewRouter(ctl, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Webhook server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down webhook server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// buildService wires every collaborator from cfg. Optional integrations that
// fail to initialise are logged and left out.
func buildService(ctx context.Context) (*service.BulletinService, func(), *db.RunStore, error) {
	closeFn := func() {}

	sheets, err := utils.NewSheetClient(ctx, cfg.SheetID, cfg.CredentialsPath)
	if err != nil {
		return nil, closeFn, nil, fmt.Errorf("connect to Google Sheets: %w", err)
	}

	deps := service.Deps{
		Store:     sheets,
		PDF:       pdf.New(cfg.ChromePath, log),
		OutputDir: cfg.OutputDir,
		LiveURL:   cfg.LiveURL,
		Logger:    log,
	}

	backend, err := translate.NewBackendFromConfig(ctx, cfg)
	switch {
	case err != nil:
		log.Warn("⚠️  Translation disabled", zap.Error(err))
	case backend == nil:
		log.Warn("⚠️  No ANTHROPIC_API_KEY or GEMINI_API_KEY set, Chinese text will not be translated")
	default:
		deps.Translator = translate.New(backend, log)
	}

	var sender notify.Sender
	if gmail, err := notify.NewGmailSender(cfg.GmailUser, cfg.GmailAppPassword); err != nil {
		log.Warn("⚠️  Email disabled", zap.Error(err))
	} else if gmail != nil {
		sender = gmail
	}
	deps.Notifier = notify.New(sender, cfg.GmailUser, log)

	if cfg.CanPublish() {
		deps.Publisher = &publish.WordPress{
			BaseURL:     cfg.WPURL,
			Username:    cfg.WPUsername,
			AppPassword: cfg.WPAppPassword,
			PageID:      cfg.WPPageID,
			AssetBase:   withTrailingSlash(cfg.LiveURL),
			Logger:      log,
		}
	}

	var history *db.RunStore
	if cfg.HasHistory() {
		conn, err := openHistory(ctx)
		if err != nil {
			log.Warn("⚠️  Run history disabled", zap.Error(err))
		} else {
			closeFn = func() { conn.Close() }
			history = db.NewRunStore(conn)
			deps.Recorder = history
		}
	}

	return service.NewBulletinService(deps), closeFn, history, nil
}

func openHistory(ctx context.Context) (*sql.DB, error) {
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	n, err := db.Migrate(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if n > 0 {
		log.Info("Applied run history migrations", zap.Int("count", n))
	}
	return conn, nil
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
