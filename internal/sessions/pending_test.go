package sessions

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-io/agent/internal/models"
)

func TestOperationResolvesOnce(t *testing.T) {
	op := newOperation[string](models.OperationLogin)

	op.resolve("first", nil)
	op.resolve("second", fmt.Errorf("late failure"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	value, err := op.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", value)
}

func TestOperationSharedResult(t *testing.T) {
	op := newOperation[string](models.OperationLogin)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			results[n], _ = op.Await(ctx)
		}(i)
	}

	op.resolve("shared", nil)
	wg.Wait()

	for _, value := range results {
		assert.Equal(t, "shared", value)
	}
}

func TestRegistryExactTokenBeatsLatest(t *testing.T) {
	reg := newRegistry()

	older := reg.beginLogin()
	newer := reg.beginLogin()

	require.True(t, reg.resolveLogin(older.Token(), &models.AuthResponse{PrivKey: "a"}, nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	response, err := older.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", response.PrivKey)

	select {
	case <-newer.Done():
		t.Fatal("the token matched resolution must not touch the newer login")
	default:
	}
}

func TestRegistryUnknownTokenFallsBackToLatest(t *testing.T) {
	reg := newRegistry()
	op := reg.beginLogin()

	require.True(t, reg.resolveLogin("never-issued", &models.AuthResponse{PrivKey: "a"}, nil))

	select {
	case <-op.Done():
	default:
		t.Fatal("the latest login should have resolved")
	}
}

func TestRegistryResolveWithNothingPending(t *testing.T) {
	reg := newRegistry()

	assert.False(t, reg.resolveLogin("", &models.AuthResponse{}, nil))
	assert.False(t, reg.resolveLogout("", nil))
	assert.False(t, reg.resolveError("", fmt.Errorf("boom")))
}

func TestRegistryResolveErrorPrecedence(t *testing.T) {
	failure := fmt.Errorf("provider rejected the request")

	t.Run("exact logout token beats a pending login", func(t *testing.T) {
		reg := newRegistry()
		login := reg.beginLogin()
		logout := reg.beginLogout()

		require.True(t, reg.resolveError(logout.Token(), failure))

		select {
		case <-logout.Done():
		default:
			t.Fatal("the logout owning the token should have failed")
		}
		select {
		case <-login.Done():
			t.Fatal("the login must stay pending")
		default:
		}
	})

	t.Run("token-less failure prefers the latest login", func(t *testing.T) {
		reg := newRegistry()
		login := reg.beginLogin()
		logout := reg.beginLogout()

		require.True(t, reg.resolveError("", failure))

		select {
		case <-login.Done():
		default:
			t.Fatal("the login should have failed first")
		}

		require.True(t, reg.resolveError("", failure))
		select {
		case <-logout.Done():
		default:
			t.Fatal("the logout should fail once no login is pending")
		}
	})
}

func TestRegistryOperationResolvesOnlyOnce(t *testing.T) {
	reg := newRegistry()
	op := reg.beginLogin()

	require.True(t, reg.resolveLogin(op.Token(), &models.AuthResponse{}, nil))
	assert.False(t, reg.resolveLogin(op.Token(), &models.AuthResponse{}, nil),
		"a consumed token must not match again")
}
