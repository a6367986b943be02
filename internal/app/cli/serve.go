package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sanctuary-app/config"
	authapi "sanctuary-app/internal/api/auth"
	routes "sanctuary-app/internal/app/http"
	"sanctuary-app/internal/app/http/middleware"
	"sanctuary-app/internal/entitlement"
	"sanctuary-app/internal/infra/newsletter"
	"sanctuary-app/internal/metrics"
	"sanctuary-app/internal/seed"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

type ServeOptions struct {
	*RootOptions
	Addr            string
	Seed            bool
	ShutdownTimeout time.Duration
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API on PORT (or --addr).

With --seed the seed file (SEED_FILE or the built-in content) is applied
before the server starts listening.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, defaults to :PORT")
	cmd.Flags().BoolVar(&opts.Seed, "seed", false, "apply the seed file before serving")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 15*time.Second, "grace period for in-flight requests")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.APP_ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB()
	if err != nil {
		return err
	}

	if opts.Seed {
		f, err := loadSeed(config.SEED_FILE)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, db, f); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	gateway, err := newGateway(db, entitlement.WithRecorder(collector))
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer limiter.Stop()
	statusLimiter := middleware.NewRateLimiter(middleware.StatusPollRateLimiterConfig())
	defer statusLimiter.Stop()

	engine := routes.NewEngine(routes.Deps{
		DB:            db,
		Gateway:       gateway,
		Metrics:       collector,
		Gatherer:      reg,
		Logger:        slog.Default(),
		Google:        authapi.NewGoogleSignIn(),
		Newsletter:    newsletter.NewConvertKit(config.CONVERTKIT_API_KEY, config.CONVERTKIT_FORM_ID),
		Captcha:       newsletter.NewRecaptcha(config.RECAPTCHA_SECRET),
		RateLimiter:   limiter,
		StatusLimiter: statusLimiter,
	})

	addr := opts.Addr
	if addr == "" {
		addr = ":" + config.PORT
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("addr", addr), slog.String("env", config.APP_ENV))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
