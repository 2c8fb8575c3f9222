package runner

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ApplyConfigFile sets flags from a YAML file whose keys are flag names.
// Flags already set on the command line are left untouched.
func ApplyConfigFile(fs *pflag.FlagSet, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	values := map[string]interface{}{}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown option %q in config file %s", name, path)
		}
		if flag.Changed {
			logger.WithField("flag", name).Debug("ApplyConfigFile: set on the command line, ignoring file value")
			continue
		}
		value, err := flagValue(values[name])
		if err != nil {
			return fmt.Errorf("invalid value for %q in config file %s: %w", name, path, err)
		}
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("invalid value for %q in config file %s: %w", name, path, err)
		}
	}
	return nil
}

func flagValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, err := flagValue(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	case map[string]interface{}:
		return "", fmt.Errorf("nested values are not supported")
	default:
		return fmt.Sprint(val), nil
	}
}
