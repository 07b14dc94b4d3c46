// @title CT Lab API
// @version 1.0
// @description Backend for the Computational Thinking learning app.

// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"ctlab_backend/internal/app"
	"ctlab_backend/internal/config"
	"ctlab_backend/internal/curriculum"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/service"
	"ctlab_backend/pkg/database"
	"ctlab_backend/pkg/logger"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configDir string

	serve := newServeCommand(&configDir)
	root := &cobra.Command{
		Use:           "ctlab",
		Short:         "CT Lab backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "directory holding config.yaml")

	root.AddCommand(serve, newMigrateCommand(&configDir), newImportCommand(&configDir))
	return root
}

func loadConfig(configDir string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.InitLogger(cfg)
	return cfg, nil
}

func newServeCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			application, err := app.NewApp(cfg)
			if err != nil {
				logger.Log.Error("Failed to start", zap.Error(err))
				return err
			}
			return application.Run()
		},
	}
}

func newMigrateCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			cfg.Database.AutoMigrate = false
			db, err := database.InitDB(&cfg.Database)
			if err != nil {
				return err
			}
			return database.Migrate(db)
		},
	}
}

func newImportCommand(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog>",
		Short: "Import a lesson catalog (.yaml, .yml or .xlsx) from local storage or MinIO",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			defer logger.Log.Sync()

			db, err := database.InitDB(&cfg.Database)
			if err != nil {
				return err
			}
			source, err := curriculum.NewSource(&cfg.Storage)
			if err != nil {
				return err
			}

			svc := service.NewCurriculumService(repository.NewLessonRepository(db), source)
			result, err := svc.ImportFile(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d lessons (%d created, %d updated), %d questions; %d lessons in total\n",
				result.Lessons, result.Created, result.Updated, result.Questions, result.Total)
			return nil
		},
	}
}
