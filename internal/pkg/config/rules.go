package config

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Rule rejects a parsed value.
type Rule[T any] func(T) error

// Same parser options the worker's cron.Cron uses: five fields or a
// descriptor such as "@daily" or "@every 3s".
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func CronSchedule(spec string) error {
	if spec == "" {
		return errors.New("empty cron schedule")
	}
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("cron schedule %q: %w", spec, err)
	}
	return nil
}

// Timezone requires a loadable IANA name. Images without tzdata reject
// every name except UTC.
func Timezone(name string) error {
	if name == "" {
		return errors.New("empty timezone")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("timezone %q: %w", name, err)
	}
	return nil
}

// Between accepts lo <= v <= hi.
func Between[T cmp.Ordered](lo, hi T) Rule[T] {
	return func(v T) error {
		if v < lo || v > hi {
			return fmt.Errorf("%v outside [%v, %v]", v, lo, hi)
		}
		return nil
	}
}

func Positive[T cmp.Ordered](v T) error {
	var zero T
	if v <= zero {
		return fmt.Errorf("%v must be positive", v)
	}
	return nil
}
