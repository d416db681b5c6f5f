package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds store-independent billing tunables. Values are
// operator-owned; per-store tax mode still comes from store settings.
type BillingConfig struct {
	InvoicePrefix  string `mapstructure:"invoicePrefix"`
	DefaultTaxMode string `mapstructure:"defaultTaxMode"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		InvoicePrefix:  "INV",
		DefaultTaxMode: "exclusive",
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/glamora/config") // Volume-mounted config
	v.AddConfigPath("/etc/glamora")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("GLAMORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.invoicePrefix", defaults.InvoicePrefix)
		v.SetDefault("billing.defaultTaxMode", defaults.DefaultTaxMode)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(&cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(&updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config with no file watching.
func NewStaticBillingConfigHolder(cfg BillingConfig) (*BillingConfigHolder, error) {
	if err := validateBillingConfig(&cfg); err != nil {
		return nil, err
	}
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder, nil
}

func (h *BillingConfigHolder) Current() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg *BillingConfig) error {
	cfg.InvoicePrefix = strings.TrimSpace(cfg.InvoicePrefix)
	if cfg.InvoicePrefix == "" {
		cfg.InvoicePrefix = "INV"
	}
	switch strings.ToLower(strings.TrimSpace(cfg.DefaultTaxMode)) {
	case "", "exclusive":
		cfg.DefaultTaxMode = "exclusive"
	case "inclusive":
		cfg.DefaultTaxMode = "inclusive"
	default:
		return errors.New("billing config: defaultTaxMode must be inclusive or exclusive")
	}
	return nil
}
