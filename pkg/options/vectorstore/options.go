// Package vectorstore provides vector store selection options.
package vectorstore

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/webinsight/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Driver names for the vector store backends.
const (
	DriverPostgres = "postgres"
	DriverMilvus   = "milvus"
	DriverMemory   = "memory"
)

// Options selects and names the vector store backend.
type Options struct {
	// Driver selects the backend (postgres, milvus, memory).
	Driver string `json:"driver" mapstructure:"driver"`

	// Collection is the table or collection name holding chunk vectors.
	Collection string `json:"collection" mapstructure:"collection"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Driver:     DriverPostgres,
		Collection: "website_chunks",
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Driver, options.Join(prefixes...)+"vector-store.driver", o.Driver, "Vector store backend (postgres, milvus, memory).")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"vector-store.collection", o.Collection, "Table or collection name for chunk vectors.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Driver {
	case DriverPostgres, DriverMilvus, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("vector-store driver must be one of postgres, milvus, memory"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("vector-store collection is required"))
	}
	return errs
}
