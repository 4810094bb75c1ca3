// conf/flags.go binds command-line flags to settings keys
package conf

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/weedai/weedcoco-go/internal/errors"
)

// flagKeyAnnotation marks a flag with the settings key it overrides.
const flagKeyAnnotation = "weedcoco_settings_key"

// MapFlag records that the flag name on flags overrides the settings key.
// It panics when no such flag is defined.
func MapFlag(flags *pflag.FlagSet, name, key string) {
	if err := flags.SetAnnotation(name, flagKeyAnnotation, []string{key}); err != nil {
		panic(fmt.Sprintf("conf: mapping flag %q: %v", name, err))
	}
}

// BindFlags binds every mapped flag in flags to its key on v. A bound flag
// only takes precedence when it was set on the command line.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		keys := f.Annotations[flagKeyAnnotation]
		if len(keys) != 1 || bindErr != nil {
			return
		}
		if err := v.BindPFlag(keys[0], f); err != nil {
			bindErr = errors.New(fmt.Errorf("binding flag --%s to %s: %w", f.Name, keys[0], err)).
				Category(errors.CategoryConfiguration).
				Build()
		}
	})
	return bindErr
}
