package config

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/syncerr"
)

// Params is the opaque, backend specific connection configuration a source is constructed with.
type Params map[string]string

// Required returns a [syncerr.ConfigurationError] naming the first key that is missing or blank.
func (p Params) Required(keys ...string) error {
	for _, key := range keys {
		if strings.TrimSpace(p[key]) == "" {
			return syncerr.NewConfigurationError(key, "is required")
		}
	}
	return nil
}

func (p Params) String(key, defaultValue string) string {
	return cmp.Or(strings.TrimSpace(p[key]), defaultValue)
}

func (p Params) Int(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(p[key])
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, syncerr.NewConfigurationError(key, fmt.Sprintf("must be an integer, got %q", value))
	}
	return parsed, nil
}

func (p Params) Bool(key string) (bool, error) {
	value := strings.TrimSpace(p[key])
	if value == "" {
		return false, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, syncerr.NewConfigurationError(key, fmt.Sprintf("must be a boolean, got %q", value))
	}
	return parsed, nil
}

func (p Params) Port(defaultPort int) (int, error) {
	port, err := p.Int("port", defaultPort)
	if err != nil {
		return 0, err
	}

	if port <= 0 {
		return 0, syncerr.NewConfigurationError("port", "is not set or <= 0")
	} else if port > math.MaxUint16 {
		return 0, syncerr.NewConfigurationError("port", fmt.Sprintf("is > %d", math.MaxUint16))
	}
	return port, nil
}

func (p Params) BatchSize() (int, error) {
	batchSize, err := p.Int("batch_size", constants.DefaultBatchSize)
	if err != nil {
		return 0, err
	}

	if batchSize <= 0 {
		return 0, syncerr.NewConfigurationError("batch_size", "must be > 0")
	}
	return batchSize, nil
}
