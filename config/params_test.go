package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/minisync/lib/syncerr"
)

func TestParams(t *testing.T) {
	params := Params{"host": "localhost", "blank": "  ", "port": "abc", "flag": "true", "batch_size": "0"}
	{
		assert.NoError(t, params.Required("host"))
		err := params.Required("host", "blank")
		var configErr syncerr.ConfigurationError
		assert.True(t, errors.As(err, &configErr))
		assert.Equal(t, "blank", configErr.Key)
		assert.ErrorContains(t, params.Required("missing"), `configuration error: "missing" is required`)
	}
	{
		assert.Equal(t, "localhost", params.String("host", "x"))
		assert.Equal(t, "x", params.String("blank", "x"))
	}
	{
		_, err := params.Port(1433)
		assert.ErrorContains(t, err, `"port" must be an integer, got "abc"`)

		port, err := Params{}.Port(1433)
		assert.NoError(t, err)
		assert.Equal(t, 1433, port)

		_, err = Params{"port": "-1"}.Port(1433)
		assert.ErrorContains(t, err, "is not set or <= 0")

		_, err = Params{"port": "70000"}.Port(1433)
		assert.ErrorContains(t, err, "is > 65535")
	}
	{
		value, err := params.Bool("flag")
		assert.NoError(t, err)
		assert.True(t, value)

		_, err = Params{"flag": "maybe"}.Bool("flag")
		assert.ErrorContains(t, err, "must be a boolean")
	}
	{
		_, err := params.BatchSize()
		assert.ErrorContains(t, err, `"batch_size" must be > 0`)

		batchSize, err := Params{}.BatchSize()
		assert.NoError(t, err)
		assert.Equal(t, 100_000, batchSize)
	}
}
