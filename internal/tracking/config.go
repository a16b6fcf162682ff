package tracking

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultOriginCity      = "São Paulo"
	defaultOriginState     = "SP"
	defaultMinDeliveryDays = 3
	defaultMaxDeliveryDays = 7
	defaultUpdateStartHour = 9
	defaultUpdateEndHour   = 18
	defaultProcessorTick   = 30 * time.Second
	defaultProcessorBatch  = 100
	defaultCityCacheKey    = "tracking:cities"
)

// Config holds runtime configuration for the tracking module. The delivery
// day range and hour window here are only the seed values for the settings
// row; once saved, the stored row wins.
type Config struct {
	OriginCity      string
	OriginState     string
	MinDeliveryDays int
	MaxDeliveryDays int
	UpdateStartHour int
	UpdateEndHour   int
	ProcessorTick   time.Duration
	ProcessorBatch  int
	CityCacheKey    string
}

// LoadConfig reads tracking configuration from environment variables and applies defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		OriginCity:      defaultOriginCity,
		OriginState:     defaultOriginState,
		MinDeliveryDays: defaultMinDeliveryDays,
		MaxDeliveryDays: defaultMaxDeliveryDays,
		UpdateStartHour: defaultUpdateStartHour,
		UpdateEndHour:   defaultUpdateEndHour,
		ProcessorTick:   defaultProcessorTick,
		ProcessorBatch:  defaultProcessorBatch,
		CityCacheKey:    defaultCityCacheKey,
	}

	if v := os.Getenv("TRACKING_ORIGIN_CITY"); strings.TrimSpace(v) != "" {
		cfg.OriginCity = strings.TrimSpace(v)
	}
	if v := os.Getenv("TRACKING_ORIGIN_STATE"); strings.TrimSpace(v) != "" {
		cfg.OriginState = strings.ToUpper(strings.TrimSpace(v))
	}

	if v, err := readIntEnv("TRACKING_MIN_DELIVERY_DAYS"); err != nil {
		return Config{}, fmt.Errorf("parse TRACKING_MIN_DELIVERY_DAYS: %w", err)
	} else if v != nil {
		cfg.MinDeliveryDays = *v
	}

	if v, err := readIntEnv("TRACKING_MAX_DELIVERY_DAYS"); err != nil {
		return Config{}, fmt.Errorf("parse TRACKING_MAX_DELIVERY_DAYS: %w", err)
	} else if v != nil {
		cfg.MaxDeliveryDays = *v
	}

	if v, err := readIntEnv("TRACKING_UPDATE_START_HOUR"); err != nil {
		return Config{}, fmt.Errorf("parse TRACKING_UPDATE_START_HOUR: %w", err)
	} else if v != nil {
		cfg.UpdateStartHour = *v
	}

	if v, err := readIntEnv("TRACKING_UPDATE_END_HOUR"); err != nil {
		return Config{}, fmt.Errorf("parse TRACKING_UPDATE_END_HOUR: %w", err)
	} else if v != nil {
		cfg.UpdateEndHour = *v
	}

	if v := os.Getenv("TRACKING_PROCESSOR_TICK_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse TRACKING_PROCESSOR_TICK_SECONDS: %w", err)
		}
		cfg.ProcessorTick = time.Duration(secs) * time.Second
	}

	if v, err := readIntEnv("TRACKING_PROCESSOR_BATCH"); err != nil {
		return Config{}, fmt.Errorf("parse TRACKING_PROCESSOR_BATCH: %w", err)
	} else if v != nil {
		cfg.ProcessorBatch = *v
	}

	if v := os.Getenv("TRACKING_CITY_CACHE_KEY"); strings.TrimSpace(v) != "" {
		cfg.CityCacheKey = strings.TrimSpace(v)
	}

	if cfg.MinDeliveryDays < 1 {
		return Config{}, fmt.Errorf("TRACKING_MIN_DELIVERY_DAYS must be positive")
	}
	if cfg.MaxDeliveryDays < cfg.MinDeliveryDays {
		return Config{}, fmt.Errorf("TRACKING_MAX_DELIVERY_DAYS must be >= TRACKING_MIN_DELIVERY_DAYS")
	}
	if cfg.UpdateStartHour < 0 || cfg.UpdateStartHour > 23 {
		return Config{}, fmt.Errorf("TRACKING_UPDATE_START_HOUR must be within 0..23")
	}
	if cfg.UpdateEndHour < 1 || cfg.UpdateEndHour > 24 {
		return Config{}, fmt.Errorf("TRACKING_UPDATE_END_HOUR must be within 1..24")
	}
	if cfg.UpdateStartHour >= cfg.UpdateEndHour {
		return Config{}, fmt.Errorf("TRACKING_UPDATE_START_HOUR must be < TRACKING_UPDATE_END_HOUR")
	}
	if cfg.ProcessorTick <= 0 {
		return Config{}, fmt.Errorf("TRACKING_PROCESSOR_TICK_SECONDS must be positive")
	}
	if cfg.ProcessorBatch <= 0 {
		return Config{}, fmt.Errorf("TRACKING_PROCESSOR_BATCH must be positive")
	}

	return cfg, nil
}

func readIntEnv(name string) (*int, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
