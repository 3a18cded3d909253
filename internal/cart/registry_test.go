package cart

import (
	"context"
	"testing"

	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsolatesUsers(t *testing.T) {
	gw := &stubGateway{}
	reg := NewRegistry(gw, nil)

	alice := auth.Identity{UserID: "alice", Role: enums.RoleCustomer, Token: "tok-a"}
	bob := auth.Identity{UserID: "bob", Role: enums.RoleCustomer, Token: "tok-b"}

	storeA := reg.For(alice)
	storeB := reg.For(bob)
	require.NotSame(t, storeA, storeB)

	require.NoError(t, storeA.AddItem(context.Background(), 7, 1))
	assert.Empty(t, storeB.Snapshot().Items)
}

func TestRegistryReturnsSameStoreForSameToken(t *testing.T) {
	reg := NewRegistry(&stubGateway{}, nil)
	identity := auth.Identity{UserID: "alice", Role: enums.RoleCustomer, Token: "tok-a"}

	assert.Same(t, reg.For(identity), reg.For(identity))
}

func TestRegistryRebindsOnTokenRotation(t *testing.T) {
	gw := &stubGateway{}
	reg := NewRegistry(gw, nil)

	first := auth.Identity{UserID: "alice", Role: enums.RoleCustomer, Token: "tok-1"}
	store := reg.For(first)
	require.NoError(t, store.AddItem(context.Background(), 7, 1))

	rotated := auth.Identity{UserID: "alice", Role: enums.RoleCustomer, Token: "tok-2"}
	same := reg.For(rotated)
	assert.Same(t, store, same)
	assert.Equal(t, "tok-2", same.Identity().Token)
	assert.Empty(t, same.Snapshot().Items)
}

func TestRegistryDropUnbinds(t *testing.T) {
	gw := &stubGateway{}
	reg := NewRegistry(gw, nil)
	identity := auth.Identity{UserID: "alice", Role: enums.RoleCustomer, Token: "tok-a"}

	store := reg.For(identity)
	require.NoError(t, store.AddItem(context.Background(), 7, 1))

	reg.Drop("alice")
	assert.True(t, store.Identity().IsZero())

	// A fresh store is handed out afterwards.
	assert.NotSame(t, store, reg.For(identity))
}
