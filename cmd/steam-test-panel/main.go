package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/steamtestpanel/steam-test-panel/internal/api"
	"github.com/steamtestpanel/steam-test-panel/internal/config"
	"github.com/steamtestpanel/steam-test-panel/internal/connector"
	"github.com/steamtestpanel/steam-test-panel/internal/metrics"
	"github.com/steamtestpanel/steam-test-panel/internal/schema"
	"github.com/steamtestpanel/steam-test-panel/internal/seeder"
	"github.com/steamtestpanel/steam-test-panel/internal/store"
	"github.com/steamtestpanel/steam-test-panel/internal/transfer"
	"github.com/steamtestpanel/steam-test-panel/internal/utils"
)

func main() {
	var (
		host       string
		user       string
		password   string
		database   string
		port       string
		envFile    string
		configFile string
		logLevel   string
	)

	var (
		cfg    *config.Config
		logger *logrus.Logger
	)

	// connect resolves connection parameters and opens the database.
	// Flag values win over config file values; both fall back to MYSQL_*
	// environment variables.
	connect := func() *connector.DatabaseConnector {
		utils.LoadEnvironmentVariables(envFile, logger)

		if host == "" {
			host = cfg.Database.Host
		}
		if user == "" {
			user = cfg.Database.User
		}
		if password == "" {
			password = cfg.Database.Password
		}
		if database == "" {
			database = cfg.Database.Database
		}
		if port == "" {
			port = cfg.Database.Port
		}
		if host == "" {
			host = os.Getenv("MYSQL_HOST")
		}
		if user == "" {
			user = os.Getenv("MYSQL_USER")
		}
		if password == "" {
			password = os.Getenv("MYSQL_PASSWORD")
		}
		if database == "" {
			database = os.Getenv("MYSQL_DATABASE")
		}
		if port == "" {
			port = os.Getenv("MYSQL_PORT")
			if port == "" {
				port = "3306"
			}
		}

		if !utils.ValidateConnectionParams(host, user, password, database, port, logger) {
			os.Exit(1)
		}

		db := connector.NewDatabaseConnector(host, user, password, database, port, logger)
		if err := db.Connect(); err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			os.Exit(1)
		}
		return db
	}

	rootCmd := &cobra.Command{
		Use:   "steam-test-panel",
		Short: "An admin panel for collecting and transferring Steam client test reports",
		Long: `Steam Test Panel

A MySQL-backed panel for test reports: an HTTP API for reports, users,
client versions, tags and invites, plus selective SQL export and
best-effort SQL import between panel instances.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			logger = utils.SetupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "", "MySQL host (default: localhost)")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "MySQL user")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "MySQL password")
	rootCmd.PersistentFlags().StringVarP(&database, "database", "d", "", "MySQL database name")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "P", "", "MySQL port (default: 3306)")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	var listenAddr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the panel HTTP API server",
		Run: func(cmd *cobra.Command, args []string) {
			db := connect()
			defer db.Disconnect()

			st := store.New(db, logger)
			if err := st.InitSchema(); err != nil {
				logger.Errorf("Failed to initialize schema: %v", err)
				os.Exit(1)
			}

			if listenAddr != "" {
				cfg.Server.ListenAddr = listenAddr
			}

			server := api.NewServer(
				st,
				transfer.NewExporter(db, logger),
				transfer.NewImporter(db, logger),
				metrics.New(),
				cfg,
				logger,
			)

			logger.Infof("Listening on %s", cfg.Server.ListenAddr)
			if err := http.ListenAndServe(cfg.Server.ListenAddr, server.SetupRoutes()); err != nil {
				logger.Errorf("Server stopped: %v", err)
				os.Exit(1)
			}
		},
	}
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "L", "", "Listen address (default: :8080)")

	var (
		selectionJSON string
		outputFile    string
	)
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a selective SQL export script",
		Long: `Export writes a REPLACE INTO script for the selected entities.

The selection is a JSON object mapping categories to id lists, for example:
  {"reports": [3, 17], "tests": ["login", "overlay"]}`,
		Run: func(cmd *cobra.Command, args []string) {
			var sel transfer.Selection
			if err := json.Unmarshal([]byte(selectionJSON), &sel); err != nil {
				logger.Errorf("Malformed selection: %v", err)
				os.Exit(1)
			}
			if len(sel) == 0 {
				logger.Error("Selection is empty")
				os.Exit(1)
			}

			db := connect()
			defer db.Disconnect()

			out := os.Stdout
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					logger.Errorf("Failed to create output file: %v", err)
					os.Exit(1)
				}
				defer f.Close()
				out = f
			}

			stats, err := transfer.NewExporter(db, logger).Export(out, sel)
			if err != nil {
				logger.Errorf("Export failed: %v", err)
				os.Exit(1)
			}
			logger.Infof("Exported %d rows from %d tables", stats.Rows, stats.Tables)
		},
	}
	exportCmd.Flags().StringVarP(&selectionJSON, "selection", "s", "", "JSON selection of categories and ids")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	_ = exportCmd.MarkFlagRequired("selection")

	var (
		importFile string
		importMode string
	)
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Execute a SQL script against the panel database",
		Run: func(cmd *cobra.Command, args []string) {
			mode, err := transfer.ParseImportMode(importMode)
			if err != nil {
				logger.Error(err)
				os.Exit(1)
			}

			script, err := os.ReadFile(importFile)
			if err != nil {
				logger.Errorf("Failed to read script: %v", err)
				os.Exit(1)
			}

			db := connect()
			defer db.Disconnect()

			result := transfer.NewImporter(db, logger).Run(string(script), mode)
			utils.PrintImportSummary(result.Executed, result.Skipped, result.Errored, result.Errors)

			if result.Errored > 0 {
				os.Exit(1)
			}
		},
	}
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the .sql script to execute")
	importCmd.Flags().StringVarP(&importMode, "mode", "m", "full", "Import mode (full or data_only)")
	_ = importCmd.MarkFlagRequired("file")

	var (
		seedUsers   int
		seedReports int
	)
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the panel database with demo data",
		Run: func(cmd *cobra.Command, args []string) {
			db := connect()
			defer db.Disconnect()

			st := store.New(db, logger)
			if err := st.InitSchema(); err != nil {
				logger.Errorf("Failed to initialize schema: %v", err)
				os.Exit(1)
			}

			sd := seeder.NewSeeder(st, schema.NewInspector(db, logger), seedUsers, seedReports, logger)
			if err := sd.Run(); err != nil {
				logger.Errorf("Seeding failed: %v", err)
				os.Exit(1)
			}
		},
	}
	seedCmd.Flags().IntVarP(&seedUsers, "users", "n", 10, "Number of tester accounts to create")
	seedCmd.Flags().IntVarP(&seedReports, "reports", "r", 25, "Number of reports to create")

	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
