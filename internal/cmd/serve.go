package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JackKelly/list-with-depth/internal/config"
	"github.com/JackKelly/list-with-depth/internal/observability"
	"github.com/JackKelly/list-with-depth/internal/server"
	"github.com/JackKelly/list-with-depth/internal/server/handlers"
	"github.com/JackKelly/list-with-depth/pkg/store"
	filestore "github.com/JackKelly/list-with-depth/pkg/store/file"
	"github.com/JackKelly/list-with-depth/pkg/store/s3"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP listing API",
	Long: `Run an HTTP server exposing depth-bounded listings.

GET /v1/list?prefix=&depth= lists a configured store; /health,
/health/live, /health/ready and /health/startup serve standard probes.

The store to expose is given as a URI, the same form the ls command
accepts:

  lwd serve --store s3://bucket/ --port 8080
  lwd serve --store file:///var/data/
  lwd serve --port 9000`,
	RunE: runServe,
}

var (
	serveHost     string
	servePort     int
	serveStoreURI string
	serveParallel int
	serveRegion   string
	serveProfile  string
	serveEndpoint string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Bind port (default from config)")
	serveCmd.Flags().StringVar(&serveStoreURI, "store", "", "Store URI to expose via /v1/list")
	serveCmd.Flags().IntVar(&serveParallel, "parallel", 0, "Max concurrent listings per request (default from config workers)")
	serveCmd.Flags().StringVar(&serveRegion, "region", "", "AWS region")
	serveCmd.Flags().StringVar(&serveProfile, "profile", "", "AWS profile")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "Custom S3 endpoint")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	overrides := map[string]any{}
	if serveHost != "" {
		overrides["server.host"] = serveHost
	}
	if servePort != 0 {
		overrides["server.port"] = servePort
	}

	cfg, err := config.Load(ctx, overrides)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}

	if err := observability.InitLogger(cfg.Logging.Level, cfg.Logging.Profile); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid logging configuration", err)
	}
	defer observability.Sync()

	handlers.InitHealthManager(versionInfo.Version)
	handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)

	opts := []server.Option{
		server.WithTimeouts(
			cfg.Server.ReadTimeout,
			cfg.Server.WriteTimeout,
			cfg.Server.IdleTimeout,
			cfg.Server.ShutdownTimeout,
		),
	}

	if serveStoreURI != "" {
		lister, err := createServeStore(ctx, serveStoreURI)
		if err != nil {
			return err
		}
		parallel := serveParallel
		if parallel <= 0 {
			parallel = cfg.Workers
		}
		opts = append(opts, server.WithLister(lister, parallel))

		if cfg.Health.Enabled {
			handlers.GetHealthManager().RegisterChecker("store", storeChecker{lister})
		}
	}

	srv := server.New(cfg.Server.Host, cfg.Server.Port, opts...)

	observability.Logger.Info("starting server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("version", versionInfo.Version),
		zap.String("store", serveStoreURI))

	if err := srv.Serve(ctx); err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
	}
	return nil
}

func createServeStore(ctx context.Context, uri string) (store.LevelLister, error) {
	parsed, err := ParseURI(uri)
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid store URI", err)
	}

	var lister store.LevelLister
	switch parsed.Store {
	case store.StoreS3:
		lister, err = s3.New(ctx, s3.Config{
			Bucket:         parsed.Bucket,
			Region:         serveRegion,
			Endpoint:       serveEndpoint,
			Profile:        serveProfile,
			ForcePathStyle: serveEndpoint != "",
		})
	case store.StoreFile:
		lister, err = filestore.New(filestore.Config{BaseDir: parsed.BaseDir})
	default:
		err = fmt.Errorf("store %q is not supported", parsed.Store)
	}
	if err != nil {
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to store", err)
	}
	return lister, nil
}

// storeChecker reports store reachability by issuing a single-key
// listing at the root.
type storeChecker struct {
	lister store.LevelLister
}

func (c storeChecker) CheckHealth(ctx context.Context) error {
	_, err := c.lister.ListLevel(ctx, store.ListLevelOptions{
		Delimiter: store.DefaultDelimiter,
		MaxKeys:   1,
	})
	return err
}
