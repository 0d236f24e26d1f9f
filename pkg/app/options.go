// Package app defines the contract between a service's option set and the
// application bootstrapper.
package app

import "github.com/spf13/pflag"

// CliOptions is implemented by a service's top-level options struct so the
// bootstrapper can register flags and run completion and validation before
// handing control to the service.
type CliOptions interface {
	// AddFlags registers all service flags on the flagset.
	AddFlags(fs *pflag.FlagSet)
	// Validate checks the final option values.
	Validate() error
	// Complete fills in derived defaults before validation.
	Complete() error
}
