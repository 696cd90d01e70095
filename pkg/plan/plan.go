package plan

import (
	"errors"
	"fmt"
)

type Plan string

const (
	Basic   Plan = "basic"
	Premium Plan = "premium"
)

type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeDark    Theme = "dark"
	ThemeWarm    Theme = "warm"
	ThemeOcean   Theme = "ocean"
)

var (
	ErrPremiumRequired = errors.New("premium plan required")
	ErrUnknownTheme    = errors.New("unknown menu theme")
)

type Feature string

const (
	FeatureAnalytics Feature = "analytics"
	FeatureThemes    Feature = "themes"
)

func Parse(s string) Plan {
	if Plan(s) == Premium {
		return Premium
	}
	return Basic
}

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeDefault, ThemeDark, ThemeWarm, ThemeOcean:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// Require fails with ErrPremiumRequired unless p unlocks feature.
func Require(p Plan, feature Feature) error {
	if p == Premium {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrPremiumRequired, feature)
}
