package cmd

import (
	"fmt"
	"os"

	"cpk-sync/core/config"
	"cpk-sync/core/logger"
	"cpk-sync/core/reconcile"
	"cpk-sync/core/t2b"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the tool version reported by --version.
const Version = "0.2.0"

var schemaFlag string

// processing flips once argument validation has passed. Failures before
// that point are usage errors (exit 2); everything after is a data or I/O
// error (exit 1).
var processing bool

// RootCmd represents the base command. The tool is a single pipeline, so
// the three table paths are positional arguments on the root itself.
var RootCmd = &cobra.Command{
	Use:   "cpk-sync <original.bin> <patched.bin> <output.bin>",
	Short: "Synchronize size fields between cpk_list.cfg.bin tables",
	Long: `cpk-sync reconciles file-size metadata between two versions of a LEVEL5
cpk_list.cfg.bin table. The patched table carries correct sizes in a
nonstandard field; the output is byte-identical to the original except for
the size fields, so checksums over untouched regions stay valid.

Arguments:
  original.bin   Source table whose size fields will be updated
  patched.bin    Patched table that already contains correct sizes
  output.bin     Output path for the synchronized table

Environment:
  CPK_DEBUG=1    Log a per-entry trace (key, schema, old/new size)
  CPK_SCHEMA     Patched-table layout: auto, legacy or current`,
	Version:       Version,
	Args:          cobra.ExactArgs(3),
	RunE:          runSync,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}

		if !processing {
			_ = RootCmd.Usage()
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.Flags().StringVar(&schemaFlag, "schema", "", "Override the patched-table layout (auto, legacy, current)")
}

func runSync(cmd *cobra.Command, args []string) error {
	processing = true

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if schemaFlag != "" {
		cfg.Cpk.Schema = schemaFlag
	}
	if cfg.Cpk.Debug {
		cfg.Log.Level = "debug"
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	l = logger.WithRunID(l)
	defer l.Sync()

	if !cfg.Cpk.IsValidSchema() {
		return fmt.Errorf("%w: %q", t2b.ErrUnsupportedSchema, cfg.Cpk.Schema)
	}

	originalPath, patchedPath, outputPath := args[0], args[1], args[2]

	original, err := os.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("read original table %s: %w", originalPath, err)
	}
	patched, err := os.ReadFile(patchedPath)
	if err != nil {
		return fmt.Errorf("read patched table %s: %w", patchedPath, err)
	}

	l.Info("Reconciling tables",
		zap.String("original", originalPath),
		zap.String("patched", patchedPath),
		zap.String("schema", cfg.Cpk.Schema),
	)

	out, plan, err := reconcile.Sync(original, patched, reconcile.Options{Schema: cfg.Cpk.Selector()})
	if err != nil {
		return err
	}

	if cfg.Cpk.Debug {
		logTrace(l, plan)
	}

	// The output is written only after the whole patch set has been applied
	// in memory; a failed run leaves no partial file behind.
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	l.Info("Synchronized table written",
		zap.String("output", outputPath),
		zap.Int("entries", plan.Summary.Total),
		zap.Int("patched", plan.Summary.Patched),
		zap.Int("unmatched", plan.Summary.Unmatched),
		zap.Int("skipped", plan.Summary.Skipped),
	)
	return nil
}

// logTrace renders the plan's per-record trace for CPK_DEBUG runs.
func logTrace(l *zap.Logger, plan *reconcile.Plan) {
	for _, tr := range plan.Trace {
		fields := []zap.Field{
			zap.String("key", tr.Key.String()),
			zap.String("schema", tr.Schema.String()),
			zap.Bool("matched", tr.Matched),
		}
		if tr.Patched {
			fields = append(fields,
				zap.Int64("old_size", tr.OldSize),
				zap.Int64("new_size", tr.NewSize),
			)
		} else {
			fields = append(fields, zap.String("reason", tr.Reason))
		}
		l.Debug("Entry", fields...)
	}
}
