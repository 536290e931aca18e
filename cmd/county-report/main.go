package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/county-report/internal/config"
	"github.com/county-report/internal/db"
	"github.com/county-report/internal/debug"
	"github.com/county-report/internal/engine"
	"github.com/county-report/internal/report"
	"github.com/county-report/internal/resolver"
	"github.com/county-report/internal/source"
)

// usageError marks a bad command line; it exits 1 with the usage line
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args[1:])

	// -h/--help is a usage request like any other bad command line; a file
	// actually named -h can still be passed after --
	helpRequested := false
	rootCmd.SetHelpFunc(func(*cobra.Command, []string) { helpRequested = true })

	err := rootCmd.ExecuteContext(context.Background())
	if helpRequested {
		printUsage(stderr, args[0], rootCmd)
		return 1
	}
	if err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			printUsage(stderr, args[0], nil)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// printUsage writes the usage line, followed by the flags when cmd is set
func printUsage(w io.Writer, prog string, cmd *cobra.Command) {
	fmt.Fprintf(w, "Usage: %s file-name.csv\n", prog)
	if cmd != nil {
		fmt.Fprintf(w, "\nFlags:\n%s", cmd.Flags().FlagUsages())
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		apiURL       string
		resolverName string
		debugEnabled bool
	)

	rootCmd := &cobra.Command{
		Use:   "county-report file-name.csv",
		Short: "Report how many CSV addresses fall in each county",
		Long: `Reads a CSV file whose first column holds free-text addresses, finds the
postcode in each address, looks its county up and prints the share of rows
per county.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api-url") {
				cfg.APIBaseURL = apiURL
			}
			if cmd.Flags().Changed("resolver") {
				cfg.Resolver = resolverName
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = debugEnabled
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			trace := debug.New(cfg.Debug, stderr)
			return generateReport(cmd.Context(), cfg, args[0], stdout, trace)
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.Flags().StringVar(&apiURL, "api-url", resolver.DefaultBaseURL, "postcode lookup endpoint (POSTCODE_API_URL)")
	rootCmd.Flags().StringVar(&resolverName, "resolver", config.ResolverAPI, "lookup backend: api or postgres (COUNTY_RESOLVER)")
	rootCmd.Flags().BoolVar(&debugEnabled, "debug", false, "trace each row to stderr (DEBUG)")

	return rootCmd
}

// generateReport runs one full pass over filename and prints the report.
// Nothing is printed if the pass is aborted.
func generateReport(ctx context.Context, cfg *config.Config, filename string, stdout io.Writer, trace *debug.Tracer) error {
	file, err := source.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	session, err := openResolver(ctx, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	trace.Printf("Resolving %s with %s backend", filename, cfg.Resolver)

	table, err := engine.NewCounter(session, trace).Run(ctx, file)
	if err != nil {
		return err
	}

	return report.Render(stdout, table)
}

// openResolver acquires the lookup session for a run; the caller closes it
func openResolver(ctx context.Context, cfg *config.Config) (resolver.Session, error) {
	switch cfg.Resolver {
	case config.ResolverPostgres:
		conn, err := db.NewConnection(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		pr, err := resolver.NewPostgresResolver(conn.DB, cfg.Database.Table)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return pr, nil
	default:
		return resolver.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout), nil
	}
}
