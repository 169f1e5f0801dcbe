package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agrisense/internal/infra/analyzer"
	analysisUC "agrisense/internal/usecase/analysis"
)

// readImage loads path and sniffs its MIME type from the content, falling
// back to the file extension.
func readImage(path string) (analyzer.Image, error) {
	// #nosec G304 -- path is supplied by the operator on the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return analyzer.Image{}, fmt.Errorf("read image: %w", err)
	}
	return analyzer.Image{Data: data, MIMEType: analysisUC.DetectImageType(data, path)}, nil
}

func soilCmd(opts *options, svc func() *analysisUC.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "soil <image>",
		Short: "Classify a soil photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}
			res, err := svc().AnalyzeSoil(cmd.Context(), img)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, res)
		},
	}
}

func diseaseCmd(opts *options, svc func() *analysisUC.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "disease <image>",
		Short: "Diagnose a plant or leaf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}
			res, err := svc().DiagnoseDisease(cmd.Context(), img)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, res)
		},
	}
}

func cropsCmd(opts *options, svc func() *analysisUC.Service) *cobra.Command {
	var q analysisUC.CropQuery
	cmd := &cobra.Command{
		Use:   "crops",
		Short: "Recommend crops for a soil and region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc().RecommendCrops(cmd.Context(), q)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, res)
		},
	}
	cmd.Flags().StringVar(&q.SoilInfo, "soil", "", "soil description, e.g. \"loamy, pH 6.5\"")
	cmd.Flags().StringVar(&q.Region, "region", "", "growing region")
	_ = cmd.MarkFlagRequired("soil")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func yieldCmd(opts *options, svc func() *analysisUC.Service) *cobra.Command {
	var q analysisUC.YieldQuery
	cmd := &cobra.Command{
		Use:   "yield",
		Short: "Predict the yield of a planting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc().PredictYield(cmd.Context(), q)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, res)
		},
	}
	cmd.Flags().StringVar(&q.Crop, "crop", "", "crop name")
	cmd.Flags().Float64Var(&q.AreaHectares, "area", 0, "planted area in hectares")
	cmd.Flags().StringVar(&q.SoilType, "soil", "", "soil type")
	cmd.Flags().StringVar(&q.Climate, "climate", "", "climate description (optional)")
	_ = cmd.MarkFlagRequired("crop")
	_ = cmd.MarkFlagRequired("area")
	_ = cmd.MarkFlagRequired("soil")
	return cmd
}
