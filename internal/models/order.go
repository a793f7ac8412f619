package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OrderLineItem is one product's presence in a room's bill.
// Product is a copy taken when the item was first added.
type OrderLineItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// LineTotal returns quantity × unit price
func (i OrderLineItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RoomOrder is the active bill of one room.
//
// The total is not a field callers can set: it is computed from Items by
// NewRoomOrder and recomputed whenever a RoomOrder is decoded from JSON.
// Values are treated as immutable once built.
type RoomOrder struct {
	RoomNumber  int
	Items       []OrderLineItem
	totalAmount decimal.Decimal
}

// NewRoomOrder builds a RoomOrder owning a copy of items, with its total derived from them
func NewRoomOrder(roomNumber int, items []OrderLineItem) RoomOrder {
	owned := make([]OrderLineItem, len(items))
	copy(owned, items)

	return RoomOrder{
		RoomNumber:  roomNumber,
		Items:       owned,
		totalAmount: sumItems(owned),
	}
}

// EmptyRoomOrder is the representation of a room with no active bill
func EmptyRoomOrder(roomNumber int) RoomOrder {
	return NewRoomOrder(roomNumber, nil)
}

func sumItems(items []OrderLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalAmount returns the sum of quantity × price over all items
func (o RoomOrder) TotalAmount() decimal.Decimal {
	return o.totalAmount
}

// ItemCount returns the number of units on the bill
func (o RoomOrder) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the bill has no line items
func (o RoomOrder) IsEmpty() bool {
	return len(o.Items) == 0
}

// FindItem returns the index of the line item for productID, or -1
func (o RoomOrder) FindItem(productID int64) int {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a RoomOrder that shares no memory with o
func (o RoomOrder) Clone() RoomOrder {
	return NewRoomOrder(o.RoomNumber, o.Items)
}

type roomOrderJSON struct {
	RoomNumber  int             `json:"roomNumber"`
	Items       []OrderLineItem `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// MarshalJSON implements json.Marshaler
func (o RoomOrder) MarshalJSON() ([]byte, error) {
	items := o.Items
	if items == nil {
		items = []OrderLineItem{}
	}
	return json.Marshal(roomOrderJSON{
		RoomNumber:  o.RoomNumber,
		Items:       items,
		TotalAmount: o.totalAmount,
	})
}

// UnmarshalJSON implements json.Unmarshaler. A stored totalAmount is ignored
// and recomputed from the decoded items.
func (o *RoomOrder) UnmarshalJSON(data []byte) error {
	var raw roomOrderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = NewRoomOrder(raw.RoomNumber, raw.Items)
	return nil
}
