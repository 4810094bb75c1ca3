package deepweeds

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/weedai/weedcoco-go/internal/conf"
	importer "github.com/weedai/weedcoco-go/internal/importers/deepweeds"
	"github.com/weedai/weedcoco-go/internal/logger"
	"github.com/weedai/weedcoco-go/internal/runtime"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// Command creates the deepweeds command, converting a DeepWeeds labels.csv.
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deepweeds",
		Short: "Convert a DeepWeeds labels.csv to a WeedCOCO document",
		Long: `Convert the DeepWeeds labels.csv (Filename,Label,Species) into a WeedCOCO
document with one image-level annotation per distinct image.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cmd.Context(), rt)
		},
	}

	setupFlags(cmd)

	return cmd
}

// setupFlags configures flags specific to the deepweeds command.
func setupFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("labels-dir", conf.DefaultDeepWeedsLabelsDir, "Directory containing labels.csv")
	flags.String("image-dir", conf.DefaultDeepWeedsImageDir, "Directory the Filename column is relative to")
	flags.StringP("out-path", "o", conf.DefaultDeepWeedsOutPath, "Path of the WeedCOCO document to write")
	flags.Bool("strict", false, "Fail when an image filename is labelled more than once")

	conf.MapFlag(flags, "labels-dir", "deepweeds.labels_dir")
	conf.MapFlag(flags, "image-dir", "deepweeds.image_dir")
	conf.MapFlag(flags, "out-path", "deepweeds.out_path")
	conf.MapFlag(flags, "strict", "deepweeds.strict")
}

func convert(ctx context.Context, rt *runtime.Context) error {
	settings := rt.Settings.DeepWeeds
	log := rt.Log("cli").WithContext(ctx)

	im := importer.New(rt.Fs, rt.Log("importer"), importer.WithMetrics(rt.ConversionMetrics()))
	doc, report, err := im.Import(ctx, importer.Options{
		LabelsDir: settings.LabelsDir,
		ImageDir:  settings.ImageDir,
		Strict:    settings.Strict,
	})
	if err != nil {
		return err
	}

	if err := weedcoco.WriteFile(rt.Fs, settings.OutPath, doc); err != nil {
		return err
	}

	log.Info("wrote weedcoco document",
		logger.String("path", settings.OutPath),
		logger.Int("images", report.Images),
		logger.Int("categories", report.Categories),
		logger.Int("missing_images", len(report.MissingFiles)))
	return nil
}
