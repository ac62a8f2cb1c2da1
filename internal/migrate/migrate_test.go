package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/taskmaster/migrations"
)

func TestFiles_AreGooseMigrations(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	require.Equal(t, "00001_init.sql", files[0])

	for _, f := range files {
		b, err := migrations.FS.ReadFile(f)
		require.NoError(t, err)
		body := string(b)
		require.True(t, strings.Contains(body, "-- +goose Up"), f)
		require.True(t, strings.Contains(body, "-- +goose Down"), f)
	}
}
