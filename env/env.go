package env

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/mikeydub/go-portfolio/service/logger"
)

// ErrMissingConfig is returned when a required configuration value is absent.
type ErrMissingConfig struct {
	Name string
}

func (e ErrMissingConfig) Error() string {
	return fmt.Sprintf("required configuration %s is not set", e.Name)
}

var validators = map[string][]string{}

var v = validator.New()

var validatorsMu = &sync.Mutex{}

// RegisterValidation registers validation tags to run against the named variable
// every time it is read.
func RegisterValidation(name string, tags ...string) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	validators[name] = dedupe(append(validators[name], tags...))
}

func validate(name string) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	for _, tag := range validators[name] {
		if err := v.Var(viper.GetString(name), tag); err != nil {
			logger.For(nil).Errorf("invalid env var: %s, tag: %s, err: %s", name, tag, err.Error())
		}
	}
}

// GetString returns the named variable as a string.
func GetString(name string) string {
	validate(name)
	return viper.GetString(name)
}

// GetInt returns the named variable as an int.
func GetInt(name string) int {
	validate(name)
	return viper.GetInt(name)
}

// GetBool returns the named variable as a bool.
func GetBool(name string) bool {
	validate(name)
	return viper.GetBool(name)
}

// StringRequired returns the named variable or ErrMissingConfig when it is
// unset or empty. Constructors use this to fail fast instead of failing at
// call time.
func StringRequired(name string) (string, error) {
	s := GetString(name)
	if s == "" {
		return "", ErrMissingConfig{Name: name}
	}
	return s, nil
}

func dedupe(src []string) []string {
	result := src[:0]

	seen := make(map[string]bool)
	for _, x := range src {
		if !seen[x] {
			result = append(result, x)
			seen[x] = true
		}
	}
	return result
}
