package webinsight

import (
	"errors"

	"github.com/spf13/pflag"

	cacheopts "github.com/kart-io/webinsight/pkg/options/cache"
	httpopts "github.com/kart-io/webinsight/pkg/options/http"
	insightopts "github.com/kart-io/webinsight/pkg/options/insight"
	llmopts "github.com/kart-io/webinsight/pkg/options/llm"
	logopts "github.com/kart-io/webinsight/pkg/options/logger"
	milvusopts "github.com/kart-io/webinsight/pkg/options/milvus"
	pgopts "github.com/kart-io/webinsight/pkg/options/postgres"
	scrapeopts "github.com/kart-io/webinsight/pkg/options/scrape"
	vsopts "github.com/kart-io/webinsight/pkg/options/vectorstore"
)

// Options contains all webinsight service options.
type Options struct {
	// HTTP contains HTTP server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Postgres contains PostgreSQL configuration.
	Postgres *pgopts.Options `json:"postgres" mapstructure:"postgres"`

	// Milvus contains Milvus configuration, used when the vector store
	// driver is "milvus".
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// VectorStore selects and configures the chunk vector store.
	VectorStore *vsopts.Options `json:"vector-store" mapstructure:"vector-store"`

	// Embedding contains embedding provider configuration.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// Chat contains chat provider configuration.
	Chat *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// Insight contains analysis pipeline configuration.
	Insight *insightopts.Options `json:"insight" mapstructure:"insight"`

	// Scrape contains homepage fetching configuration.
	Scrape *scrapeopts.Options `json:"scrape" mapstructure:"scrape"`

	// Cache contains query cache configuration.
	Cache *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// APISecret protects the analysis and query endpoints with a static
	// bearer token. Empty disables authentication.
	APISecret string `json:"api-secret" mapstructure:"api-secret"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP:        httpopts.NewOptions(),
		Log:         logopts.NewOptions(),
		Postgres:    pgopts.NewOptions(),
		Milvus:      milvusopts.NewOptions(),
		VectorStore: vsopts.NewOptions(),
		Embedding:   llmopts.NewEmbeddingOptions(),
		Chat:        llmopts.NewChatOptions(),
		Insight:     insightopts.NewOptions(),
		Scrape:      scrapeopts.NewOptions(),
		Cache:       cacheopts.NewOptions(),
	}
}

// AddFlags adds all service flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Postgres.AddFlags(fs)
	o.Milvus.AddFlags(fs)
	o.VectorStore.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Chat.AddFlags(fs, "chat")
	o.Insight.AddFlags(fs)
	o.Scrape.AddFlags(fs)
	o.Cache.AddFlags(fs)

	fs.StringVar(&o.APISecret, "api-secret", o.APISecret, "Static bearer token for the API. Empty disables authentication.")
}

// Validate validates all options.
func (o *Options) Validate() error {
	var errs []error

	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Postgres.Validate()...)
	errs = append(errs, o.VectorStore.Validate()...)
	errs = append(errs, o.Embedding.Validate()...)
	errs = append(errs, o.Chat.Validate()...)
	errs = append(errs, o.Insight.Validate()...)
	errs = append(errs, o.Scrape.Validate()...)
	errs = append(errs, o.Cache.Validate()...)

	// Milvus settings only matter when that driver is selected.
	if o.VectorStore.Driver == vsopts.DriverMilvus {
		errs = append(errs, o.Milvus.Validate()...)
	}

	return errors.Join(errs...)
}

// Complete completes the options with derived defaults.
func (o *Options) Complete() error {
	if err := o.Embedding.Complete(); err != nil {
		return err
	}
	if err := o.Chat.Complete(); err != nil {
		return err
	}
	return o.Cache.Complete()
}
