package main

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/gravitas-games/hexboard/internal/config"
)

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	assert.NoError(t, setupLogging(config.LogConfig{Level: "debug", Format: "json"}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	assert.NoError(t, setupLogging(config.LogConfig{Level: "warn", Format: "text"}))
	assert.Error(t, setupLogging(config.LogConfig{Level: "loud", Format: "text"}))
	assert.Error(t, setupLogging(config.LogConfig{Level: "info", Format: "xml"}))
}
