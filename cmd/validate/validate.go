package validate

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/weedai/weedcoco-go/internal/conf"
	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/logger"
	"github.com/weedai/weedcoco-go/internal/runtime"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// Command creates the validate command, checking an existing document.
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a WeedCOCO or COCO-compatible JSON document",
		Long: `Validate a JSON document against the weedcoco or compatible-coco rules.
Every violation is printed; the command fails when there is at least one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateFile(cmd.OutOrStdout(), rt, args[0])
		},
	}

	cmd.Flags().String("schema", conf.SchemaWeedCOCO, "Schema to validate against: weedcoco or compatible-coco")
	conf.MapFlag(cmd.Flags(), "schema", "validate.schema")

	return cmd
}

func validateFile(out io.Writer, rt *runtime.Context, path string) error {
	schema := rt.Settings.Validate.Schema

	doc, err := weedcoco.ReadFile(rt.Fs, path)
	if err != nil {
		return err
	}

	err = weedcoco.Validate(doc, schema)
	var verr *weedcoco.ValidationError
	if errors.As(err, &verr) {
		rt.ConversionMetrics().RecordValidation(schema, len(verr.Violations))
		for _, v := range verr.Violations {
			fmt.Fprintln(out, v)
		}
		return err
	}
	if err != nil {
		return err
	}

	rt.ConversionMetrics().RecordValidation(schema, 0)
	rt.Log("cli").Debug("document is valid",
		logger.String("path", path),
		logger.String("schema", schema))
	fmt.Fprintf(out, "%s: valid %s document\n", path, schema)
	return nil
}
