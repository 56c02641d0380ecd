package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"casper/internal/config"
	"casper/internal/deps"
	"casper/internal/device"
	"casper/internal/history"
	"casper/internal/pipeline"
	"casper/internal/services/whisper"
	"casper/internal/transcribe"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var inputFlag string
	var outputFlag string
	var modelFlag string
	var deviceFlag string
	var computeTypeFlag string
	var skipGPUCheck bool

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "casper",
		Short:         "Batch speech transcription pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputFlag == "" {
				return cmd.Help()
			}
			return runPipeline(cmd, ctx, runOptions{
				input:        inputFlag,
				output:       outputFlag,
				model:        modelFlag,
				device:       deviceFlag,
				computeType:  computeTypeFlag,
				skipGPUCheck: skipGPUCheck,
			})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Directory of per-person folders to transcribe")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory for CSVs and the run summary")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Whisper model size (tiny, base, small, ...)")
	rootCmd.Flags().StringVar(&deviceFlag, "device", "", "Inference device (cuda or cpu, default auto-detect)")
	rootCmd.Flags().StringVar(&computeTypeFlag, "compute-type", "", "Numeric precision (float16, float32, int8)")
	rootCmd.Flags().BoolVar(&skipGPUCheck, "skip-gpu-check", false, "Skip the CUDA hardware probe and assume cpu")

	rootCmd.AddCommand(newGPUCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

type runOptions struct {
	input        string
	output       string
	model        string
	device       string
	computeType  string
	skipGPUCheck bool
}

// runPipeline validates flags against the configuration, resolves the
// inference device, and drives one full pipeline run. Per-file failures are
// recorded inside the run; only configuration problems surface as errors.
func runPipeline(cmd *cobra.Command, ctx *commandContext, opts runOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	inputDir, err := config.ExpandPath(opts.input)
	if err != nil {
		return err
	}
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("input directory does not exist: %s", inputDir)
	}

	if strings.TrimSpace(opts.output) == "" {
		return fmt.Errorf("--output is required")
	}
	outputDir, err := config.ExpandPath(opts.output)
	if err != nil {
		return err
	}

	modelSize := cfg.Whisper.Model
	if opts.model != "" {
		modelSize = opts.model
	}
	if !slices.Contains(config.ModelSizes, modelSize) {
		return fmt.Errorf("unknown model size %q (choose one of %s)", modelSize, strings.Join(config.ModelSizes, ", "))
	}

	deviceName := cfg.Whisper.Device
	if opts.device != "" {
		deviceName = opts.device
	}
	if deviceName != "" && !slices.Contains(config.Devices, deviceName) {
		return fmt.Errorf("unknown device %q (choose one of %s)", deviceName, strings.Join(config.Devices, ", "))
	}
	computeType := cfg.Whisper.ComputeType
	if opts.computeType != "" {
		computeType = opts.computeType
	}
	if computeType != "" && !slices.Contains(config.ComputeTypes, computeType) {
		return fmt.Errorf("unknown compute type %q (choose one of %s)", computeType, strings.Join(config.ComputeTypes, ", "))
	}

	logger := ctx.logger()

	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	if missing := deps.FirstMissing(statuses); missing != nil {
		return fmt.Errorf("missing dependency %s (%s): %s", missing.Name, missing.Description, missing.Detail)
	}

	available := false
	if deviceName == "" && !opts.skipGPUCheck {
		report := device.NewSelector(logger).Probe()
		available = report.Available
	}
	deviceName, computeType = device.Resolve(deviceName, computeType, available)

	worker := whisper.NewWorker(whisper.Config{
		Model:       modelSize,
		Device:      deviceName,
		ComputeType: computeType,
		Python:      cfg.PythonBinary(),
	}, logger)
	transcriber := transcribe.New(worker, modelSize, deviceName, logger)

	store := openHistoryStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	p := pipeline.New(pipeline.Options{
		InputDir:  inputDir,
		OutputDir: outputDir,
		ModelSize: modelSize,
		Device:    deviceName,
	}, transcriber, store, logger)

	if err := p.Run(cmd.Context()); err != nil {
		return err
	}

	stats := p.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d files across %d folders (%d successful, %d errors)\n",
		stats.TotalFiles, len(stats.Folders), stats.SuccessfulFiles, stats.FilesWithErrors)
	fmt.Fprintf(out, "Reports written to %s\n", outputDir)
	return nil
}

// openHistoryStore opens the run-history database. History failures never
// block a transcription run.
func openHistoryStore(cfg *config.Config, logger *slog.Logger) *history.Store {
	path := strings.TrimSpace(cfg.Paths.HistoryDB)
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn("open history database", slog.Any("error", err))
		return nil
	}
	return store
}
