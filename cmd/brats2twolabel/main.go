// Command brats2twolabel converts a BraTS-style three-label tumor
// segmentation into a cleaned two-label segmentation, using an independently
// produced whole-tumor segmentation (e.g. HD-GLIO) to suppress spurious
// necrosis.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"brats2twolabel/pkg/config"
	"brats2twolabel/pkg/conversion"
	"brats2twolabel/pkg/nifti"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath           string
		clusterSizeThreshold int
		enclosureFill        bool
		verbose              bool
	)

	cmd := &cobra.Command{
		Use:   "brats2twolabel <brats_file> <hdglio_file> <output_file>",
		Short: "Convert a BraTS three-label segmentation to a two-label segmentation",
		Long: `brats2twolabel reconciles a BraTS-style segmentation (1 NCR/NET, 2 ED, 4 AT)
with a whole-tumor segmentation produced by HD-GLIO into a two-label volume
(1 NE, 2 CE). Necrosis is restricted to the whole-tumor region, pockets fully
enclosed by enhancing tissue are discarded, small isolated clusters are
removed, and enhancing tissue always takes precedence in the output.

The output file carries the affine and header of the BraTS input.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Explicitly set flags win over the config file.
			if cmd.Flags().Changed("cluster-size-threshold") {
				cfg.Conversion.ClusterSizeThreshold = clusterSizeThreshold
			}
			if cmd.Flags().Changed("enclosure-fill") {
				cfg.Conversion.EnclosureFill = enclosureFill
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Output.Verbose = verbose
			}

			if cfg.Conversion.ClusterSizeThreshold < 0 {
				return fmt.Errorf("cluster-size-threshold must be non-negative, got %d",
					cfg.Conversion.ClusterSizeThreshold)
			}

			return run(args[0], args[1], args[2], cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file with parameter defaults")
	cmd.Flags().IntVar(&clusterSizeThreshold, "cluster-size-threshold", 50,
		"minimum cluster size in voxels; clusters must be strictly larger to survive")
	// Strict boolean: --enclosure-fill=false disables filling. The original
	// converter accepted any non-empty value as true; this one does not.
	cmd.Flags().BoolVar(&enclosureFill, "enclosure-fill", true,
		"remove necrosis candidates completely enclosed by enhancing tissue")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(bratsPath, hdglioPath, outputPath string, cfg *config.Config) error {
	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	start := time.Now()

	brats, err := nifti.Read(bratsPath)
	if err != nil {
		return err
	}
	logger.Info("loaded primary segmentation",
		zap.String("path", bratsPath),
		zap.Int("width", brats.Vol.Width),
		zap.Int("height", brats.Vol.Height),
		zap.Int("depth", brats.Vol.Depth))

	hdglio, err := nifti.Read(hdglioPath)
	if err != nil {
		return err
	}
	logger.Info("loaded whole-tumor segmentation",
		zap.String("path", hdglioPath),
		zap.Int("width", hdglio.Vol.Width),
		zap.Int("height", hdglio.Vol.Height),
		zap.Int("depth", hdglio.Vol.Depth))

	converter := conversion.NewConverter(conversion.Params{
		ClusterSizeThreshold: cfg.Conversion.ClusterSizeThreshold,
		EnclosureFill:        cfg.Conversion.EnclosureFill,
		Logger:               logger,
	})

	result, err := converter.Convert(brats.Vol, hdglio.Vol)
	if err != nil {
		return err
	}

	if err := nifti.Write(outputPath, result, brats); err != nil {
		return err
	}

	logger.Info("wrote two-label segmentation",
		zap.String("path", outputPath),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
