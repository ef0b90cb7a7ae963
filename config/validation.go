package config

import (
	"errors"
	"fmt"
	"strings"

	"promptkit/core"
)

// maxStartupThreshold caps thresholds at a value an app could plausibly reach.
const maxStartupThreshold = 1_000_000

// Validate validates store configuration
func (s *StoreConfig) Validate() error {
	var errs []string

	if strings.TrimSpace(s.Descriptor) == "" {
		errs = append(errs, "descriptor cannot be empty")
	}

	if s.Timeout < 0 {
		errs = append(errs, "timeout cannot be negative")
	}

	if s.SQL.MaxOpenConns < 0 || s.SQL.MaxIdleConns < 0 {
		errs = append(errs, "sql pool sizes cannot be negative")
	}

	if s.Redis.PoolSize < 0 {
		errs = append(errs, "redis pool_size cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func validatePolicy(p core.Policy) error {
	var errs []string

	for _, prompt := range []core.Prompt{core.PromptPush, core.PromptInApp} {
		if p.For(prompt).MinStartups > maxStartupThreshold {
			errs = append(errs, fmt.Sprintf("%s.min_startups must be <= %d", prompt, maxStartupThreshold))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	validLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if l.Level == level {
			isValidLevel = true
			break
		}
	}

	if !isValidLevel {
		errs = append(errs, fmt.Sprintf("level must be one of: %s", strings.Join(validLevels, ", ")))
	}

	validFormats := []string{"json", "text"}
	isValidFormat := false
	for _, format := range validFormats {
		if l.Format == format {
			isValidFormat = true
			break
		}
	}

	if !isValidFormat {
		errs = append(errs, fmt.Sprintf("format must be one of: %s", strings.Join(validFormats, ", ")))
	}

	validOutputs := []string{"stdout", "stderr"}
	isValidOutput := false
	for _, output := range validOutputs {
		if l.Output == output {
			isValidOutput = true
			break
		}
	}

	if !isValidOutput {
		errs = append(errs, fmt.Sprintf("output must be one of: %s", strings.Join(validOutputs, ", ")))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates metrics configuration
func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.TextfilePath == "" {
		return errors.New("textfile_path cannot be empty when metrics are enabled")
	}
	return nil
}
