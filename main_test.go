package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mridul249/legalbot-backend/config"
)

func TestCheckServeConfigRejectsEmptyJWTSecret(t *testing.T) {
	cfg := config.Config{}
	err := checkServeConfig(cfg)
	require.Error(t, err, "the server must not start without a signing secret")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestCheckServeConfigAcceptsSecret(t *testing.T) {
	cfg := config.Config{JWTSecret: "a-real-secret"}
	assert.NoError(t, checkServeConfig(cfg))
}
