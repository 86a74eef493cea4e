package cmd

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tayloree/foodcat/internal/api"
	"github.com/tayloree/foodcat/internal/server"
	"github.com/tayloree/foodcat/internal/store"
)

var flagPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the categorization HTTP API",
	Example: `  foodcat serve
  foodcat serve --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&flagPort, "port", "p", "", "Listen port (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flagPort != "" {
		cfg.Server.Port = flagPort
	}
	matcher, err := loadMatcher(cfg)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Matcher: matcher,
		Version: Version,
		Defaults: server.Defaults{
			MatchItemsLimit:   cfg.Matching.MatchItemsLimit,
			FilterItemsLimit:  cfg.Matching.FilterItemsLimit,
			AccuracyThreshold: cfg.Matching.AccuracyThreshold,
			Workers:           cfg.Matching.Workers,
		},
	}

	if dealers, err := cfg.Catalog.DealerList(); err == nil && len(dealers) > 0 {
		client := api.NewClient(cfg.Catalog.ClientOptions())
		defer client.Close()
		deps.Source = client
		deps.Dealers = dealers
	} else {
		log.Warn("no catalog dealers configured; /api/v1/catalogs is disabled")
	}

	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			log.WithError(err).Warn("offer store unavailable; /api/v1/offers is disabled")
		} else {
			defer st.Close()
			deps.Store = st
		}
	}

	log.WithFields(log.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"categories":  matcher.CategoryCount(),
	}).Info("starting foodcat API")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.SetupRouter(cfg, server.NewHandler(deps))
	return server.ListenAndServe(ctx, ":"+cfg.Server.Port, router)
}
