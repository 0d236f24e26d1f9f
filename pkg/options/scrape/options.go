// Package scrape provides website fetching configuration options.
package scrape

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/webinsight/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains configuration for fetching website homepages.
type Options struct {
	// Timeout bounds a single fetch attempt.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxAttempts is the total number of fetch attempts before giving up.
	MaxAttempts int `json:"max-attempts" mapstructure:"max-attempts"`

	// Backoff is the fixed delay between attempts.
	Backoff time.Duration `json:"backoff" mapstructure:"backoff"`

	// UserAgent overrides the default browser User-Agent header.
	UserAgent string `json:"user-agent" mapstructure:"user-agent"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
		Backoff:     1 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"scrape.timeout", o.Timeout, "Timeout for a single fetch attempt.")
	fs.IntVar(&o.MaxAttempts, options.Join(prefixes...)+"scrape.max-attempts", o.MaxAttempts, "Total fetch attempts before giving up.")
	fs.DurationVar(&o.Backoff, options.Join(prefixes...)+"scrape.backoff", o.Backoff, "Fixed delay between fetch attempts.")
	fs.StringVar(&o.UserAgent, options.Join(prefixes...)+"scrape.user-agent", o.UserAgent, "Override the User-Agent header.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scrape timeout must be positive"))
	}
	if o.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("scrape max-attempts must be positive"))
	}
	if o.Backoff < 0 {
		errs = append(errs, fmt.Errorf("scrape backoff cannot be negative"))
	}
	return errs
}
