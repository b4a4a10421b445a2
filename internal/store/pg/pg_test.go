package pg

import (
	"context"
	"fmt"
	"os"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
	"github.com/dropDatabas3/socialconnect/internal/settings"
	"github.com/dropDatabas3/socialconnect/internal/store"
	migrations "github.com/dropDatabas3/socialconnect/migrations/postgres"
)

func TestMapError_UniqueViolation(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_provider_uq"})
	assert.True(t, repository.IsConflict(err))
	assert.Contains(t, err.Error(), "users_email_provider_uq")

	other := fmt.Errorf("boom")
	assert.Same(t, other, mapError(other))
}

func TestLoadMigrations_Ordered(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_b.sql": {Data: []byte("B")},
		"sql/0001_a.sql": {Data: []byte("A")},
		"sql/README.md":  {Data: []byte("ignored")},
		"sql/0003_c.sql": {Data: []byte("C")},
	}
	ms, err := LoadMigrations(fsys, "sql")
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, "0001_a", ms[0].Version)
	assert.Equal(t, "C", ms[2].SQL)
}

func TestLoadMigrations_Embedded(t *testing.T) {
	ms, err := LoadMigrations(migrations.FS, migrations.Dir)
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.Equal(t, "0001_users_roles", ms[0].Version)
}

func TestConnect_RequiresDSN(t *testing.T) {
	_, err := store.Open(context.Background(), store.Config{Driver: "postgres"})
	assert.ErrorIs(t, err, repository.ErrNoDatabase)
}

// TestPostgres_RoundTrip runs against a real database when
// SOCIALCONNECT_TEST_PG_DSN is set.
func TestPostgres_RoundTrip(t *testing.T) {
	dsn := os.Getenv("SOCIALCONNECT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SOCIALCONNECT_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	conn, err := store.Open(ctx, store.Config{Driver: "postgres", DSN: dsn})
	require.NoError(t, err)
	defer conn.Close()
	pgc := conn.(*Connection)

	_, err = Migrate(ctx, pgc.Pool())
	require.NoError(t, err)
	again, err := Migrate(ctx, pgc.Pool())
	require.NoError(t, err)
	assert.Empty(t, again)

	_, _ = pgc.Pool().Exec(ctx, `DELETE FROM users WHERE email LIKE '%@roundtrip.test'`)

	role, err := conn.Roles().FindOneByType(ctx, "authenticated")
	require.NoError(t, err)

	u, err := conn.Users().Create(ctx, repository.CreateUserInput{
		Username: "ann", Email: "Ann@roundtrip.test", Provider: "github", RoleID: role.ID, Confirmed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, role.ID, u.RoleID)

	_, err = conn.Users().Create(ctx, repository.CreateUserInput{Email: "ann@roundtrip.test", Provider: "github"})
	assert.True(t, repository.IsConflict(err))

	found, err := conn.Users().Find(ctx, repository.UserFilter{Email: "ANN@roundtrip.test"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	cs := pgc.Settings()
	require.NoError(t, cs.Put(ctx, settings.GrantKey, map[string]settings.Grant{"github": {Enabled: true, Key: "k"}}))
	grants, err := cs.Grants(ctx)
	require.NoError(t, err)
	assert.True(t, grants["github"].Enabled)
}
