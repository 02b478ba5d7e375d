package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/giygas/interactions-api/catalog"
	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/checker"
	"github.com/giygas/interactions-api/config"
	"github.com/giygas/interactions-api/handlers"
	"github.com/giygas/interactions-api/health"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
	"github.com/giygas/interactions-api/patients"
	"github.com/giygas/interactions-api/scheduler"
	"github.com/giygas/interactions-api/server"
	"github.com/giygas/interactions-api/session"
	"github.com/giygas/interactions-api/validation"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "interactions",
		Short:        "Drug interaction checking service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(drugsCmd())

	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	// A missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		return err
	}

	logCloser := logging.InitLoggerWithOptions(logging.Options{
		Dir:            cfg.LogDir,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer func() { _ = logCloser.Close() }()

	logging.Info("Configuration loaded", "env", cfg.Env.String(), "catalog", cfg.CatalogFile)

	store := catalog.NewStore(nil, nil)
	loader := catalog.NewFileLoader(cfg.CatalogFile)

	sessions, err := session.NewStore(cfg.SessionCapacity, store)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}

	directory, err := patients.LoadDefault()
	if err != nil {
		return fmt.Errorf("failed to load patients: %w", err)
	}

	// The embedded catalog never changes, only a file is worth re-reading
	reloadCron := ""
	if cfg.CatalogFile != "" {
		reloadCron = cfg.CatalogReloadCron
	}

	sched := scheduler.NewScheduler(store, loader, sessions, scheduler.Options{
		ReloadCron: reloadCron,
		SessionTTL: cfg.SessionTTL,
	})
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	handler := handlers.NewHTTPHandler(
		store,
		sessions,
		directory,
		validation.NewInputValidator(),
		health.NewHealthChecker(store, sessions, sched),
	)
	srv := server.NewServer(cfg, handler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case sig := <-quit:
		logging.Info("Received signal", "signal", sig.String())
	case err := <-errChan:
		logging.Error("Server failed to start", "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(ctx)
}

type checkOptions struct {
	drugs       []string
	allergies   []string
	patientID   string
	catalogFile string
	minSeverity string
}

func checkCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a prescription for interactions and allergy conflicts",
		Example: `  interactions check --drug Warfarine --drug Aspirine
  interactions check --drug Aspirine --patient 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.drugs, "drug", "d", nil, "Drug name (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.allergies, "allergy", "a", nil, "Known allergy (repeatable)")
	cmd.Flags().StringVarP(&opts.patientID, "patient", "p", "", "Patient ID from the patient directory")
	cmd.Flags().StringVar(&opts.catalogFile, "catalog", "", "Catalog file (.json, .yaml); embedded catalog when empty")
	cmd.Flags().StringVar(&opts.minSeverity, "min-severity", "", "Only report findings at or above this severity")
	_ = cmd.MarkFlagRequired("drug")

	return cmd
}

func runCheck(out io.Writer, opts *checkOptions) error {
	store, err := loadStore(opts.catalogFile)
	if err != nil {
		return err
	}

	minSeverity := entities.SeverityUnknown
	if opts.minSeverity != "" {
		if minSeverity, err = entities.ParseSeverity(opts.minSeverity); err != nil {
			return err
		}
	}

	var patient *entities.Patient
	if opts.patientID != "" {
		directory, err := patients.LoadDefault()
		if err != nil {
			return fmt.Errorf("failed to load patients: %w", err)
		}
		p, ok := directory.Get(opts.patientID)
		if !ok {
			return fmt.Errorf("patient %q not found", opts.patientID)
		}
		p.Allergies = append(append([]string{}, p.Allergies...), opts.allergies...)
		patient = &p
	} else if len(opts.allergies) > 0 {
		patient = &entities.Patient{Allergies: opts.allergies}
	}

	// Repeated --drug flags collapse to one entry, first occurrence wins
	seen := make(map[string]bool, len(opts.drugs))
	var drugs []string
	for _, d := range opts.drugs {
		if d = strings.TrimSpace(d); d == "" || seen[d] {
			continue
		}
		seen[d] = true
		drugs = append(drugs, d)
	}

	findings := checker.Check(drugs, store, patient)
	metrics.RecordCheck(metrics.SourceCLI, findings)
	findings = checker.FilterMinSeverity(findings, minSeverity)

	return printFindings(out, findings)
}

func printFindings(out io.Writer, findings []checker.Finding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(out, "No interaction or allergy conflict found.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tKIND\tDRUGS\tDESCRIPTION\tRECOMMENDATION")
	for _, f := range findings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			f.Severity, f.Kind, strings.Join(f.Drugs, " + "), f.Description, f.Recommendation)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := checker.Summarize(findings)
	_, err := fmt.Fprintf(out, "\n%d finding(s): %d critical, %d high, %d moderate, %d low\n",
		s.Total, s.CriticalCount, s.HighCount, s.ModerateCount, s.LowCount)
	return err
}

func drugsCmd() *cobra.Command {
	var (
		category    string
		catalogFile string
	)

	cmd := &cobra.Command{
		Use:   "drugs [query]",
		Short: "Search the drug catalog by name or active ingredient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runDrugs(cmd.OutOrStdout(), query, category, catalogFile)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", catalog.AllCategories, "Category filter")
	cmd.Flags().StringVar(&catalogFile, "catalog", "", "Catalog file (.json, .yaml); embedded catalog when empty")

	return cmd
}

func runDrugs(out io.Writer, query, category, catalogFile string) error {
	store, err := loadStore(catalogFile)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tACTIVE INGREDIENT\tCATEGORY")
	for _, d := range store.FindDrugs(query, category) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.ActiveIngredient, d.Category)
	}
	return tw.Flush()
}

// loadStore reads the catalog once for the one-shot commands
func loadStore(path string) (*catalog.Store, error) {
	drugs, rules, err := catalog.NewFileLoader(path).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return catalog.NewStore(drugs, rules), nil
}
