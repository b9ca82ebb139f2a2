package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add orders index", "add_orders_index"},
		{"Add-Orders-Index", "add_orders_index"},
		{"ADD__ORDERS__INDEX", "add_orders_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "create catalog", "products and categories")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_catalog.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "Create Orders", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_create_orders.down.sql"), second.DownPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(up), "-- 000001 create_catalog"))
	assert.Contains(t, string(up), "-- products and categories")

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_create_catalog", "000002_create_orders"}, names)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("orders numerically and ignores other files", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{
			"000010_ten.up.sql", "000010_ten.down.sql",
			"000002_two.up.sql", "000002_two.down.sql",
			"README.md",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o755))

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_two", "000010_ten"}, names)

		next, err := nextVersion(dir)
		require.NoError(t, err)
		assert.Equal(t, 11, next)
	})
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "..", DefaultDir)
	names, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for i, name := range names {
		assert.Equal(t, i+1, versionOf(name), "migration versions are contiguous")
		_, err := os.Stat(filepath.Join(dir, name+downSuffix))
		assert.NoError(t, err, "%s has a down migration", name)
	}
}
