package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMigrationDir_WalksUpFromPackage(t *testing.T) {
	dir := findMigrationDir()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "migrations", filepath.Base(dir))

	_, err = os.Stat(filepath.Join(dir, "000001_init.up.sql"))
	assert.NoError(t, err)
}

func TestFindMigrationDir_EnvOverride(t *testing.T) {
	t.Setenv(MigrationDirEnv, "/tmp/custom-migrations")
	assert.Equal(t, "/tmp/custom-migrations", findMigrationDir())
}
