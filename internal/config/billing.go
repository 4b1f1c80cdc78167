package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig carries the billing policy knobs that operators may tune
// without redeploying: tax rate, geofence drift, abnormal-consumption
// detection and sequence code widths.
type BillingConfig struct {
	TaxRate            float64 `mapstructure:"taxRate"`
	MaxDriftMeters     float64 `mapstructure:"maxDriftMeters"`
	AbnormalMultiplier float64 `mapstructure:"abnormalMultiplier"`
	LookbackMonths     int     `mapstructure:"lookbackMonths"`
	ReadingCodePad     int     `mapstructure:"readingCodePad"`
	InvoiceCodePad     int     `mapstructure:"invoiceCodePad"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		TaxRate:            0.12,
		MaxDriftMeters:     100,
		AbnormalMultiplier: 3,
		LookbackMonths:     3,
		ReadingCodePad:     3,
		InvoiceCodePad:     6,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewBillingConfigHolder loads billing.yml and keeps watching it for changes.
// A missing file falls back to defaults; an invalid reload is ignored.
func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/aquabill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("AQUABILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.taxRate", defaults.TaxRate)
	v.SetDefault("billing.maxDriftMeters", defaults.MaxDriftMeters)
	v.SetDefault("billing.abnormalMultiplier", defaults.AbnormalMultiplier)
	v.SetDefault("billing.lookbackMonths", defaults.LookbackMonths)
	v.SetDefault("billing.readingCodePad", defaults.ReadingCodePad)
	v.SetDefault("billing.invoiceCodePad", defaults.InvoiceCodePad)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
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
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder wraps a fixed config, used by tests.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return errors.New("billing.taxRate must be in [0, 1)")
	}
	if cfg.MaxDriftMeters <= 0 {
		return errors.New("billing.maxDriftMeters must be positive")
	}
	if cfg.AbnormalMultiplier <= 1 {
		return errors.New("billing.abnormalMultiplier must exceed 1")
	}
	if cfg.LookbackMonths <= 0 {
		return errors.New("billing.lookbackMonths must be positive")
	}
	if cfg.ReadingCodePad <= 0 || cfg.InvoiceCodePad <= 0 {
		return errors.New("billing sequence pads must be positive")
	}
	return nil
}
