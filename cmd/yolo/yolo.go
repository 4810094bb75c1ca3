package yolo

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weedai/weedcoco-go/internal/conf"
	"github.com/weedai/weedcoco-go/internal/errors"
	importer "github.com/weedai/weedcoco-go/internal/importers/yolo"
	"github.com/weedai/weedcoco-go/internal/logger"
	"github.com/weedai/weedcoco-go/internal/runtime"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// Command creates the yolo command, converting a YOLO label directory.
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yolo",
		Short: "Convert YOLO annotations to a COCO-compatible document",
		Long: `Convert a directory of YOLO label files and its class manifest (*.yaml)
into a COCO-compatible document, optionally merging agcontext and metadata
fragments and validating the result before it is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cmd.Context(), rt)
		},
	}

	setupFlags(cmd)

	return cmd
}

// setupFlags configures flags specific to the yolo command.
func setupFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("yolo-dir", "", "Directory with YOLO *.txt label files and the class manifest")
	flags.String("image-dir", "", "Directory with the images the label files describe")
	flags.String("agcontext-path", "", "YAML or JSON agcontext to attach to every image")
	flags.String("metadata-path", "", "YAML or JSON mapping merged into info.metadata")
	flags.Bool("validate", false, "Validate the document before writing it")
	flags.String("schema", conf.DefaultYOLOSchema, "Schema used by --validate: weedcoco or compatible-coco")
	flags.StringP("out-path", "o", conf.DefaultYOLOOutPath, "Path of the document to write")

	conf.MapFlag(flags, "yolo-dir", "yolo.dir")
	conf.MapFlag(flags, "image-dir", "yolo.image_dir")
	conf.MapFlag(flags, "agcontext-path", "yolo.agcontext_path")
	conf.MapFlag(flags, "metadata-path", "yolo.metadata_path")
	conf.MapFlag(flags, "validate", "yolo.validate")
	conf.MapFlag(flags, "schema", "yolo.schema")
	conf.MapFlag(flags, "out-path", "yolo.out_path")
}

func convert(ctx context.Context, rt *runtime.Context) error {
	settings := rt.Settings.YOLO
	if settings.Dir == "" {
		return errors.UsageError("--yolo-dir is required")
	}
	if settings.ImageDir == "" {
		return errors.UsageError("--image-dir is required")
	}

	log := rt.Log("cli").WithContext(ctx)

	im := importer.New(rt.Fs, rt.Log("importer"), importer.WithMetrics(rt.ConversionMetrics()))
	doc, report, err := im.Convert(ctx, importer.Options{
		Dir:      settings.Dir,
		ImageDir: settings.ImageDir,
	})
	if err != nil {
		return err
	}

	var steps []weedcoco.Step
	if settings.AgContextPath != "" {
		steps = append(steps, weedcoco.AgContextFromFile(rt.Fs, settings.AgContextPath))
	}
	if settings.MetadataPath != "" {
		steps = append(steps, weedcoco.MetadataFromFile(rt.Fs, settings.MetadataPath))
	}
	if err := weedcoco.Apply(doc, steps...); err != nil {
		return err
	}

	if settings.Validate {
		if err := validateDocument(rt, log, doc, settings.Schema); err != nil {
			return err
		}
	}

	if err := weedcoco.WriteFile(rt.Fs, settings.OutPath, doc); err != nil {
		return err
	}

	log.Info("wrote coco document",
		logger.String("path", settings.OutPath),
		logger.Int("images", report.Images),
		logger.Int("annotations", report.Annotations),
		logger.Bool("validated", settings.Validate))
	return nil
}

// validateDocument checks doc against schema, logging each violation.
func validateDocument(rt *runtime.Context, log logger.Logger, doc *weedcoco.Document, schema string) error {
	err := weedcoco.Validate(doc, schema)

	var verr *weedcoco.ValidationError
	switch {
	case err == nil:
		rt.ConversionMetrics().RecordValidation(schema, 0)
		log.Debug("document is valid", logger.String("schema", schema))
		return nil
	case errors.As(err, &verr):
		rt.ConversionMetrics().RecordValidation(schema, len(verr.Violations))
		for _, v := range verr.Violations {
			log.Error("validation violation",
				logger.String("schema", schema),
				logger.String("path", v.Path),
				logger.String("message", v.Message))
		}
		return fmt.Errorf("not writing document: %w", err)
	default:
		return err
	}
}
