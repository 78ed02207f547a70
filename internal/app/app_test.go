package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photo-prestiges/server/internal/app"
	"github.com/photo-prestiges/server/internal/config"
)

func TestNewRejectsUnknownService(t *testing.T) {
	_, err := app.New(context.Background(), "billing", config.Config{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown service")
}
