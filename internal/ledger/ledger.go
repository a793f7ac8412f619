// Package ledger keeps the active bill of every room in memory.
//
// Each room maps to an immutable models.RoomOrder. Mutators never edit a
// stored value in place: they build a new RoomOrder from the old one and
// swap it into the map, so a reader holding an earlier value keeps a
// consistent items/total pair.
//
// A room whose last line item is removed is pruned, so a room is either
// absent (no active bill) or holds at least one item.
package ledger

import (
	"sort"
	"sync"

	"github.com/Lixing-Zhang/room-orders/internal/models"
)

// Ledger maps room numbers to their active bill.
// Every operation runs to completion under the mutex. Callers that act on
// the returned value afterwards (persisting it, publishing it) are expected
// to keep a single writer per room, otherwise those follow-ups may be seen
// out of order.
type Ledger struct {
	mu    sync.RWMutex
	rooms map[int]models.RoomOrder
}

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{
		rooms: make(map[int]models.RoomOrder),
	}
}

// Load replaces the ledger content with orders, e.g. from persistence at startup.
// Each order is normalised before it is stored: line items with a quantity
// below one, or whose product snapshot does not match the productId or is not
// a valid product, are dropped, and repeated productIds are merged into the
// first occurrence. Orders left without items are skipped. When a room
// appears twice the last one wins.
//
// Load returns the number of line items that were dropped or merged.
func (l *Ledger) Load(orders []models.RoomOrder) int {
	rooms := make(map[int]models.RoomOrder, len(orders))
	fixed := 0
	for _, order := range orders {
		normalised, n := normalise(order)
		fixed += n
		if normalised.IsEmpty() {
			continue
		}
		rooms[order.RoomNumber] = normalised
	}

	l.mu.Lock()
	l.rooms = rooms
	l.mu.Unlock()

	return fixed
}

func normalise(order models.RoomOrder) (models.RoomOrder, int) {
	items := make([]models.OrderLineItem, 0, len(order.Items))
	seen := make(map[int64]int, len(order.Items))
	fixed := 0

	for _, item := range order.Items {
		if item.Quantity < 1 || item.ProductID != item.Product.ID || item.Product.Validate() != nil {
			fixed++
			continue
		}
		if i, ok := seen[item.ProductID]; ok {
			items[i].Quantity += item.Quantity
			fixed++
			continue
		}
		seen[item.ProductID] = len(items)
		items = append(items, item)
	}

	return models.NewRoomOrder(order.RoomNumber, items), fixed
}

// AddItem puts one unit of product on the room's bill, opening the bill if
// the room has none. The product is copied into the bill.
func (l *Ledger) AddItem(roomNumber int, product models.Product) (models.RoomOrder, error) {
	if err := product.Validate(); err != nil {
		return models.RoomOrder{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.rooms[roomNumber]
	if !ok {
		current = models.EmptyRoomOrder(roomNumber)
	}

	items := make([]models.OrderLineItem, len(current.Items), len(current.Items)+1)
	copy(items, current.Items)

	if i := current.FindItem(product.ID); i >= 0 {
		items[i].Quantity++
	} else {
		items = append(items, models.OrderLineItem{
			ProductID: product.ID,
			Quantity:  1,
			Product:   product,
		})
	}

	next := models.NewRoomOrder(roomNumber, items)
	l.rooms[roomNumber] = next

	return next.Clone(), nil
}

// RemoveItem takes one unit of productID off the room's bill. A line item
// reaching zero is dropped, and a bill left without items is closed.
//
// Removing from a room without a bill, or a product not on the bill, is a
// no-op: the current state is returned and changed is false.
func (l *Ledger) RemoveItem(roomNumber int, productID int64) (order models.RoomOrder, changed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.rooms[roomNumber]
	if !ok {
		return models.EmptyRoomOrder(roomNumber), false
	}

	i := current.FindItem(productID)
	if i < 0 {
		return current.Clone(), false
	}

	items := make([]models.OrderLineItem, 0, len(current.Items))
	for j, item := range current.Items {
		if j == i {
			item.Quantity--
			if item.Quantity <= 0 {
				continue
			}
		}
		items = append(items, item)
	}

	next := models.NewRoomOrder(roomNumber, items)
	if next.IsEmpty() {
		delete(l.rooms, roomNumber)
	} else {
		l.rooms[roomNumber] = next
	}

	return next.Clone(), true
}

// ClearRoom closes the room's bill. It reports whether a bill was open and
// returns the bill as it stood when it was closed.
func (l *Ledger) ClearRoom(roomNumber int) (settled models.RoomOrder, cleared bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.rooms[roomNumber]
	if !ok {
		return models.EmptyRoomOrder(roomNumber), false
	}

	delete(l.rooms, roomNumber)
	return current.Clone(), true
}

// Get returns the room's bill. An absent room yields the empty representation and false.
func (l *Ledger) Get(roomNumber int) (models.RoomOrder, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	order, ok := l.rooms[roomNumber]
	if !ok {
		return models.EmptyRoomOrder(roomNumber), false
	}
	return order.Clone(), true
}

// Snapshot returns every active bill ordered by room number
func (l *Ledger) Snapshot() []models.RoomOrder {
	l.mu.RLock()
	orders := make([]models.RoomOrder, 0, len(l.rooms))
	for _, order := range l.rooms {
		orders = append(orders, order.Clone())
	}
	l.mu.RUnlock()

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].RoomNumber < orders[j].RoomNumber
	})
	return orders
}

// ActiveRooms returns the number of rooms with an open bill
func (l *Ledger) ActiveRooms() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rooms)
}
