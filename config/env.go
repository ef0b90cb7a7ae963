package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// loadFromEnv overlays PROMPTKIT_* environment variables onto cfg. A nested
// struct's env tag extends the prefix, so Policy.Push.MinStartups is read from
// PROMPTKIT_POLICY_PUSH_MIN_STARTUPS.
func loadFromEnv(cfg *Config) error {
	return applyEnv(reflect.ValueOf(cfg).Elem(), EnvPrefix)
}

func applyEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := envName(prefix, sf.Tag.Get("env"))
		field := v.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnv(field, name); err != nil {
				return err
			}
			continue
		}
		if name == prefix {
			continue
		}

		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		if err := setFromString(field, raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func envName(prefix, tag string) string {
	if tag == "" {
		return prefix
	}
	return prefix + "_" + tag
}

// setFromString parses raw into field. It covers the kinds Config uses:
// strings, bools, ints, durations, uints and string maps.
func setFromString(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q", raw)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", raw)
		}
		field.SetUint(n)
	case reflect.Map:
		m, err := parseStringMap(raw)
		if err != nil {
			return err
		}
		if field.Type() != reflect.TypeOf(m) {
			return fmt.Errorf("unsupported map type %s", field.Type())
		}
		field.Set(reflect.ValueOf(m))
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

// parseStringMap reads "k1=v1,k2=v2".
func parseStringMap(raw string) (map[string]string, error) {
	m := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("invalid map entry %q", pair)
		}
		m[k] = v
	}
	return m, nil
}
