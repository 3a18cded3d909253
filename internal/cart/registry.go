package cart

import (
	"sync"

	"github.com/amarquez/solestore-storefront/internal/gateway"
	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/logger"
)

// Registry hands out one Store per user so concurrent sessions never
// observe each other's carts.
type Registry struct {
	gw   gateway.Gateway
	logg *logger.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(gw gateway.Gateway, logg *logger.Logger) *Registry {
	return &Registry{
		gw:     gw,
		logg:   logg,
		stores: make(map[string]*Store),
	}
}

// For returns the store bound to the given identity, creating and
// binding one on first use.
func (r *Registry) For(identity auth.Identity) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[identity.UserID]
	if !ok {
		store = NewStore(r.gw, r.logg)
		store.Bind(identity)
		r.stores[identity.UserID] = store
		return store
	}

	// The bearer token rotates across sessions. Rebinding resets the
	// cached cart; the next refresh restores it from the gateway.
	if store.Identity().Token != identity.Token {
		store.Bind(identity)
	}
	return store
}

// Drop discards the store for a user, typically at logout.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[userID]; ok {
		store.Unbind()
		delete(r.stores, userID)
	}
}
