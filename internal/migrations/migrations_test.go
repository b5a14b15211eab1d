package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(files, "sql/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(files, down)
		assert.NoError(t, err, "missing down migration for %s", up)
	}
}

func TestInitMigrationCreatesSchema(t *testing.T) {
	body, err := fs.ReadFile(files, "sql/000001_init.up.sql")
	require.NoError(t, err)

	for _, table := range []string{"users", "events", "families", "guests", "rsvp_info", "dietary_options", "email_logs"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
