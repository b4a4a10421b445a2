package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
	"github.com/dropDatabas3/socialconnect/internal/store"
)

func TestOpen_MemoryDriver(t *testing.T) {
	conn, err := store.Open(context.Background(), store.Config{Driver: "memory"})
	require.NoError(t, err)
	defer conn.Close()

	role, err := conn.Roles().FindOneByType(context.Background(), "authenticated")
	require.NoError(t, err)
	assert.Equal(t, "1", role.ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := store.Open(context.Background(), store.Config{Driver: "cassandra"})
	assert.ErrorContains(t, err, `unknown driver "cassandra"`)
}

func TestFind_CaseInsensitiveEmail(t *testing.T) {
	s := New()
	s.Put(repository.User{Email: "Ann@Example.com", Provider: "github"})
	s.Put(repository.User{Email: "ann@example.com", Provider: "google"})
	s.Put(repository.User{Email: "bob@example.com", Provider: "github"})

	got, err := s.Find(context.Background(), repository.UserFilter{Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Find(context.Background(), repository.UserFilter{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCreate_ConflictOnSameEmailAndProvider(t *testing.T) {
	s := New()
	ctx := context.Background()
	in := repository.CreateUserInput{Username: "ann", Email: "ann@example.com", Provider: "github", RoleID: "1", Confirmed: true}

	u, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.True(t, u.Confirmed)

	in.Email = "ANN@example.com"
	_, err = s.Create(ctx, in)
	assert.ErrorIs(t, err, repository.ErrConflict)

	in.Provider = "google"
	_, err = s.Create(ctx, in)
	assert.NoError(t, err)
}

func TestCreate_ConcurrentSameUserOnlyOneWins(t *testing.T) {
	s := New()
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(context.Background(), repository.CreateUserInput{Email: "race@example.com", Provider: "github"})
			if repository.IsConflict(err) {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, 15, conflicts)
}

func TestFindOneByType_Missing(t *testing.T) {
	_, err := New().FindOneByType(context.Background(), "authenticated")
	assert.True(t, repository.IsNotFound(err))
}
