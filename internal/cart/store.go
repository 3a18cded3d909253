package cart

import (
	"context"
	"sync"

	"github.com/amarquez/solestore-storefront/internal/gateway"
	"github.com/amarquez/solestore-storefront/pkg/auth"
	"github.com/amarquez/solestore-storefront/pkg/errors"
	"github.com/amarquez/solestore-storefront/pkg/logger"
	"github.com/amarquez/solestore-storefront/pkg/money"
	"github.com/shopspring/decimal"
)

// Store holds the locally cached cart for one identity and keeps it
// consistent with the gateway via refresh-after-mutation. Mutations are
// serialized; reads return the last published snapshot without blocking
// behind in-flight operations.
type Store struct {
	gw   gateway.Gateway
	logg *logger.Logger

	// opMu serializes mutations so refreshes cannot interleave.
	opMu sync.Mutex

	// stateMu guards the published snapshot and the binding generation.
	stateMu  sync.RWMutex
	identity auth.Identity
	gen      uint64
	snapshot gateway.CartSnapshot
}

// NewStore builds an unbound store. Bind must be called before any
// operation.
func NewStore(gw gateway.Gateway, logg *logger.Logger) *Store {
	return &Store{
		gw:       gw,
		logg:     logg,
		snapshot: gateway.EmptySnapshot(),
	}
}

// Bind attaches the store to an identity and resets the local state to
// the empty cart. Any refresh still in flight for a previous binding is
// discarded when it lands.
func (s *Store) Bind(identity auth.Identity) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.identity = identity
	s.gen++
	s.snapshot = gateway.EmptySnapshot()
}

// Unbind clears the identity and the cached cart.
func (s *Store) Unbind() {
	s.Bind(auth.Identity{})
}

// Snapshot returns the last published cart state. It never blocks
// behind mutations.
func (s *Store) Snapshot() gateway.CartSnapshot {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.snapshot
}

// Identity returns the currently bound identity.
func (s *Store) Identity() auth.Identity {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.identity
}

// Refresh re-fetches the authoritative cart and publishes it. On
// failure the last known good snapshot is retained.
func (s *Store) Refresh(ctx context.Context) (gateway.CartSnapshot, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	identity, gen, err := s.binding()
	if err != nil {
		return s.Snapshot(), err
	}
	if err := s.refreshAs(ctx, identity, gen); err != nil {
		return s.Snapshot(), err
	}
	return s.Snapshot(), nil
}

// AddItem adds quantity units of a shoe to the cart. The gateway may
// clamp the stored quantity to available stock; the follow-up refresh
// surfaces whatever it decided.
func (s *Store) AddItem(ctx context.Context, shoeID int64, quantity int) error {
	if shoeID <= 0 {
		return errors.New(errors.CodeValidation, "shoe id must be positive")
	}
	if quantity < 1 {
		return errors.New(errors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, func(ctx context.Context, identity auth.Identity) error {
		return s.gw.AddCartItem(ctx, identity, shoeID, quantity)
	})
}

// UpdateItem sets the quantity of an existing cart line.
func (s *Store) UpdateItem(ctx context.Context, lineID int64, quantity int) error {
	if quantity < 1 {
		return errors.New(errors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, func(ctx context.Context, identity auth.Identity) error {
		return s.gw.UpdateCartItem(ctx, identity, lineID, quantity)
	})
}

// RemoveItem deletes a cart line. Removing a line the gateway no longer
// knows about is treated as already satisfied.
func (s *Store) RemoveItem(ctx context.Context, lineID int64) error {
	return s.mutate(ctx, func(ctx context.Context, identity auth.Identity) error {
		err := s.gw.RemoveCartItem(ctx, identity, lineID)
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil
		}
		return err
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(ctx context.Context, identity auth.Identity) error {
		return s.gw.ClearCart(ctx, identity)
	})
}

func (s *Store) binding() (auth.Identity, uint64, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.identity.IsZero() {
		return auth.Identity{}, 0, errors.New(errors.CodeAuthRequired, "no identity bound")
	}
	return s.identity, s.gen, nil
}

// mutate runs op then refreshes, holding opMu for the whole pair so
// concurrent mutations cannot interleave their refreshes.
func (s *Store) mutate(ctx context.Context, op func(context.Context, auth.Identity) error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	identity, gen, err := s.binding()
	if err != nil {
		return err
	}

	if err := op(ctx, identity); err != nil {
		return err
	}
	return s.refreshAs(ctx, identity, gen)
}

// refreshAs fetches the authoritative cart and publishes it, unless the
// binding generation moved while the fetch was in flight. A stale
// response is dropped on the floor.
func (s *Store) refreshAs(ctx context.Context, identity auth.Identity, gen uint64) error {
	snap, err := s.gw.FetchCart(ctx, identity)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, identity.UserID), "cart refresh failed, keeping last known state")
		}
		return err
	}

	normalize(&snap)

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.gen != gen {
		return nil
	}
	s.snapshot = snap
	return nil
}

// normalize recomputes the derived totals locally so a gateway that
// omits them still yields a consistent snapshot.
func normalize(snap *gateway.CartSnapshot) {
	if snap.Items == nil {
		snap.Items = []gateway.CartLine{}
	}
	totalItems := 0
	total := decimal.Zero
	for _, line := range snap.Items {
		totalItems += line.Quantity
		total = total.Add(money.LineTotal(line.UnitPrice, line.Quantity))
	}
	snap.TotalItems = totalItems
	snap.TotalPrice = money.RoundCents(total)
}
