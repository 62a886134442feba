package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_schema.sql", names[0])

	raw, err := migrationsFS.ReadFile("migrations/" + names[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS bookings")
	assert.Contains(t, string(raw), "slug             TEXT NOT NULL UNIQUE")
	assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS email_logs")
}

func TestPending(t *testing.T) {
	names := []string{"001_schema.sql", "002_indexes.sql", "003_more.sql"}

	assert.Equal(t, names, pending(names, map[string]bool{}))
	assert.Equal(t, []string{"003_more.sql"}, pending(names, map[string]bool{"001_schema.sql": true, "002_indexes.sql": true}))
	assert.Empty(t, pending(names, map[string]bool{"001_schema.sql": true, "002_indexes.sql": true, "003_more.sql": true}))
}
