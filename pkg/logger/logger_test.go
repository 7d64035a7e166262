package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/pkg/logger"
)

func TestLogger_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "kardex", Out: &buf})

	log.Named("recorder").Info().Str("product_id", "P").Msg("movimiento registrado")
	log.Debug().Msg("descartado por nivel")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kardex", line["service"])
	assert.Equal(t, "recorder", line["component"])
	assert.Equal(t, "P", line["product_id"])
	assert.Equal(t, "info", line["level"])
}

func TestLogger_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "ruidoso", Out: &buf})
	log.Debug().Msg("no")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("si")
	assert.NotZero(t, buf.Len())
}
