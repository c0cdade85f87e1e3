package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taxcore/assessment-engine/internal/calculation"
	"github.com/taxcore/assessment-engine/internal/config"
	"github.com/taxcore/assessment-engine/internal/output"
	"github.com/taxcore/assessment-engine/internal/ratestore"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "taxcalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(os.Stdout, info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "taxcalc",
	Short: "Tax assessment engine CLI",
	Long:  "Comprehensive tax calculation and compliance assessment for registered taxpayers",
}

// loadRateTable builds the rate table from either snapshot files or the
// rate database, depending on which flags were given.
func loadRateTable(cmd *cobra.Command, taxYear int) (ratestore.RateTable, error) {
	dsn, _ := cmd.Flags().GetString("rates-dsn")
	files, _ := cmd.Flags().GetStringSlice("rates")

	if dsn != "" {
		db, err := ratestore.OpenPostgres(dsn)
		if err != nil {
			return nil, err
		}
		return ratestore.LoadStoreFromDB(cmd.Context(), db, taxYear)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no rate source: pass --rates or --rates-dsn")
	}
	return ratestore.LoadStoreFromFiles(files...)
}

var assessCmd = &cobra.Command{
	Use:   "assess [input-file]",
	Short: "Run a comprehensive assessment for a client",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		req, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		if asOf, _ := cmd.Flags().GetString("as-of"); asOf != "" {
			parsed, err := time.Parse("2006-01-02", asOf)
			if err != nil {
				log.Fatalf("invalid --as-of date %q: %v", asOf, err)
			}
			req.AsOf = parsed
		}

		rates, err := loadRateTable(cmd, req.TaxYear)
		if err != nil {
			log.Fatal(err)
		}

		engine := calculation.NewAssessmentEngine(rates)
		debugMode, _ := cmd.Flags().GetBool("debug")
		if debugMode {
			engine.SetLogger(simpleCLILogger{})
		}

		assessment, err := engine.Assess(context.Background(), req)
		if err != nil {
			log.Fatal(err)
		}

		outputFormat, _ := cmd.Flags().GetString("format")
		f := output.GetFormatterByName(outputFormat)
		if f == nil {
			log.Fatalf("unknown format %q (available: %s)",
				outputFormat, strings.Join(output.AvailableFormatterNames(), ", "))
		}
		data, err := f.Format(assessment)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(string(data))
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate an assessment request file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		_, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Request file %s is valid\n", inputFile)
	},
}

func init() {
	assessCmd.Flags().StringSlice("rates", nil, "Rate snapshot YAML files (repeatable)")
	assessCmd.Flags().String("rates-dsn", "", "Postgres DSN for the rate database")
	assessCmd.Flags().String("format", "console", "Output format (console, json, csv)")
	assessCmd.Flags().String("as-of", "", "Override the request's as-of date (YYYY-MM-DD)")
	assessCmd.Flags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
