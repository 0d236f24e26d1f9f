// Package options defines the interface shared by all configuration sections
// and helpers for building namespaced flag names.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// Join concatenates prefixes with "." and appends a trailing "." when the
// result is non-empty, producing flag names like "postgres.host" or
// "embedding.provider".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}

// IOptions is implemented by every configuration section.
type IOptions interface {
	// Validate checks the section's values and returns all problems found.
	Validate() []error

	// AddFlags registers the section's flags, namespaced under prefixes.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}
