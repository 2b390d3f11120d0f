package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/mealdash/client-go/internal/api"
	"github.com/mealdash/client-go/internal/kvstore"
	"github.com/mealdash/client-go/internal/logging"
)

// PromoValidator looks up the promos currently valid for a restaurant and
// order total. Implemented by api.Client.
type PromoValidator interface {
	ValidPromos(ctx context.Context, restaurantID int64, orderTotal float64) ([]api.Promo, error)
}

// Manager is the cart state manager. All mutations are synchronous with
// respect to in-memory state and persist to the key-value store
// afterwards; persistence failures are logged and never surfaced, so a
// crash can at worst lose the latest snapshot.
type Manager struct {
	mu        sync.Mutex
	kv        kvstore.Store
	validator PromoValidator
	log       *logging.Logger

	restaurantID int64
	items        map[int64]Line
	promos       []int64
	ownerID      int64
}

// NewManager creates an empty cart manager.
func NewManager(kv kvstore.Store, validator PromoValidator, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{
		kv:        kv,
		validator: validator,
		log:       log,
		items:     make(map[int64]Line),
	}
}

// Restore loads the persisted cart snapshot. It never fails the caller:
// a missing or corrupt snapshot yields an empty cart.
func (m *Manager) Restore(ctx context.Context) {
	raw, err := m.kv.Get(ctx, kvstore.KeyCart)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			m.log.WithError(err).Warn("cart restore failed, starting empty")
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		m.log.WithError(err).Warn("stored cart snapshot is corrupt, starting empty")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.restaurantID = snap.RestaurantID
	m.promos = snap.Promos
	m.ownerID = snap.OwnerID
	m.items = make(map[int64]Line, len(snap.Items))
	for id, line := range snap.Items {
		if line.Quantity > 0 {
			m.items[id] = line
		}
	}
	if len(m.items) == 0 {
		m.resetBindingLocked()
	}
}

// AddOrUpdateItem merges an item into the cart. Quantity zero removes the
// entry. Adding an item from a different restaurant than the current
// binding replaces the whole cart with a fresh one seeded by the new item.
func (m *Manager) AddOrUpdateItem(ctx context.Context, restaurantID int64, item api.MenuItem, quantity int) {
	if quantity <= 0 {
		m.RemoveItem(ctx, item.ID)
		return
	}

	m.mu.Lock()
	if m.restaurantID != 0 && m.restaurantID != restaurantID {
		m.items = make(map[int64]Line)
		m.promos = nil
		m.ownerID = 0
	}
	m.restaurantID = restaurantID
	m.items[item.ID] = Line{Item: item, Quantity: quantity}
	m.mu.Unlock()

	m.persist(ctx)
}

// UpdateQuantity overwrites the quantity of an existing entry; a quantity
// of zero or less deletes it. The item payload is untouched.
func (m *Manager) UpdateQuantity(ctx context.Context, itemID int64, quantity int) {
	m.mu.Lock()
	line, ok := m.items[itemID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if quantity <= 0 {
		delete(m.items, itemID)
		if len(m.items) == 0 {
			m.resetBindingLocked()
		}
	} else {
		line.Quantity = quantity
		m.items[itemID] = line
	}
	m.mu.Unlock()

	m.persist(ctx)
}

// RemoveItem deletes an entry regardless of quantity.
func (m *Manager) RemoveItem(ctx context.Context, itemID int64) {
	m.mu.Lock()
	delete(m.items, itemID)
	if len(m.items) == 0 {
		m.resetBindingLocked()
	}
	m.mu.Unlock()

	m.persist(ctx)
}

// SetOwner sets the cart owner without touching items. An empty cart has
// no binding to own, so the call is a no-op until an item is added.
func (m *Manager) SetOwner(ctx context.Context, ownerID int64) {
	m.mu.Lock()
	if len(m.items) == 0 {
		m.mu.Unlock()
		return
	}
	m.ownerID = ownerID
	m.mu.Unlock()

	m.persist(ctx)
}

// AddPromo validates a promo against the bound restaurant and current
// order total, then appends it if not already present. Returns the
// validated promo record.
func (m *Manager) AddPromo(ctx context.Context, promoID int64, orderTotal float64) (*api.Promo, error) {
	m.mu.Lock()
	restaurantID := m.restaurantID
	m.mu.Unlock()

	if restaurantID == 0 {
		return nil, ErrNoRestaurant
	}

	valid, err := m.validator.ValidPromos(ctx, restaurantID, orderTotal)
	if err != nil {
		return nil, err
	}
	var found *api.Promo
	for i := range valid {
		if valid[i].ID == promoID {
			found = &valid[i]
			break
		}
	}
	if found == nil {
		return nil, ErrInvalidPromo
	}

	m.mu.Lock()
	present := false
	for _, id := range m.promos {
		if id == promoID {
			present = true
			break
		}
	}
	if !present {
		m.promos = append(m.promos, promoID)
	}
	m.mu.Unlock()

	m.persist(ctx)
	promo := *found
	return &promo, nil
}

// RemovePromo removes one promo code.
func (m *Manager) RemovePromo(ctx context.Context, promoID int64) {
	m.mu.Lock()
	kept := m.promos[:0]
	for _, id := range m.promos {
		if id != promoID {
			kept = append(kept, id)
		}
	}
	m.promos = kept
	if len(m.promos) == 0 {
		m.promos = nil
	}
	m.mu.Unlock()

	m.persist(ctx)
}

// ClearPromos removes all promo codes.
func (m *Manager) ClearPromos(ctx context.Context) {
	m.mu.Lock()
	m.promos = nil
	m.mu.Unlock()

	m.persist(ctx)
}

// ItemQuantity returns the stored quantity for an item, or zero.
func (m *Manager) ItemQuantity(itemID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[itemID].Quantity
}

// TotalItems returns the sum of all quantities.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, line := range m.items {
		total += line.Quantity
	}
	return total
}

// TotalCost returns the sum of discounted unit cost times quantity over
// all entries. The discounted cost is what the user pays, not list price.
func (m *Manager) TotalCost() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0.0
	for _, line := range m.items {
		total += line.Item.DiscountedCost * float64(line.Quantity)
	}
	return total
}

// RestaurantID returns the bound restaurant, or zero when the cart is
// empty.
func (m *Manager) RestaurantID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restaurantID
}

// OwnerID returns the cart owner, or zero.
func (m *Manager) OwnerID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownerID
}

// Promos returns the promo codes in insertion order.
func (m *Manager) Promos() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.promos))
	copy(out, m.promos)
	return out
}

// Lines returns the cart entries ordered by item ID.
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Line, 0, len(m.items))
	for _, line := range m.items {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.ID < out[j].Item.ID })
	return out
}

// Clear resets the cart to its empty shape and persists immediately.
func (m *Manager) Clear(ctx context.Context) {
	m.Reset()
	m.persist(ctx)
}

// Reset clears the in-memory cart without touching storage. The logout
// path uses it: the session clear already removed the persisted cart key.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.items = make(map[int64]Line)
	m.resetBindingLocked()
	m.mu.Unlock()
}

// resetBindingLocked drops the restaurant/owner binding and promos.
// Caller holds the lock.
func (m *Manager) resetBindingLocked() {
	m.restaurantID = 0
	m.ownerID = 0
	m.promos = nil
}

// persist writes the current snapshot. Failures are logged only; the
// in-memory cart stays authoritative for the rest of the process.
func (m *Manager) persist(ctx context.Context) {
	m.mu.Lock()
	snap := snapshot{
		RestaurantID: m.restaurantID,
		Items:        make(map[int64]Line, len(m.items)),
		Promos:       m.promos,
		OwnerID:      m.ownerID,
	}
	for id, line := range m.items {
		snap.Items[id] = line
	}
	m.mu.Unlock()

	raw, err := json.Marshal(snap)
	if err != nil {
		m.log.WithError(err).Warn("failed to encode cart snapshot")
		return
	}
	if err := m.kv.Set(ctx, kvstore.KeyCart, raw); err != nil {
		m.log.WithError(err).Warn("failed to persist cart snapshot")
	}
}
