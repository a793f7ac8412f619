package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/room-orders/internal/ledger"
	"github.com/Lixing-Zhang/room-orders/internal/metrics"
	"github.com/Lixing-Zhang/room-orders/internal/models"
	"github.com/Lixing-Zhang/room-orders/pkg/logger"
)

var (
	ErrUnknownRoom = errors.New("room not found")
)

// ProductLookup is the catalog view the room service needs
type ProductLookup interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

// EventPublisher notifies other systems about bill changes
type EventPublisher interface {
	PublishRoomUpdated(ctx context.Context, order models.RoomOrder) error
	PublishRoomCleared(ctx context.Context, settled models.RoomOrder) error
}

// OrderLoader provides the bills to restore at startup
type OrderLoader interface {
	LoadOrders(ctx context.Context) ([]models.RoomOrder, error)
}

// RoomConfig describes the deployment's fixed set of rooms
type RoomConfig struct {
	RoomCount      int
	CurrencySymbol string
}

// RoomSummary is the overview of one room
type RoomSummary struct {
	RoomNumber  int             `json:"roomNumber"`
	Active      bool            `json:"active"`
	ItemCount   int             `json:"itemCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// RoomService handles room bill use cases on top of the ledger.
// Persistence and events are side effects: their failures are logged and
// never undo the in-memory change.
type RoomService struct {
	cfg       RoomConfig
	ledger    *ledger.Ledger
	products  ProductLookup
	store     OrderStore
	publisher EventPublisher
	printer   BillPrinter
	logger    *slog.Logger
	now       func() time.Time
}

// NewRoomService creates a room service. store, publisher and printer may be nil.
func NewRoomService(
	cfg RoomConfig,
	l *ledger.Ledger,
	products ProductLookup,
	store OrderStore,
	publisher EventPublisher,
	printer BillPrinter,
	log *slog.Logger,
) *RoomService {
	if printer == nil {
		printer = NewLogPrinter(log)
	}
	return &RoomService{
		cfg:       cfg,
		ledger:    l,
		products:  products,
		store:     store,
		publisher: publisher,
		printer:   printer,
		logger:    log,
		now:       time.Now,
	}
}

// ValidateRoom checks that roomNumber is one of the configured rooms
func (s *RoomService) ValidateRoom(roomNumber int) error {
	if roomNumber < 1 || roomNumber > s.cfg.RoomCount {
		return fmt.Errorf("%w: %d", ErrUnknownRoom, roomNumber)
	}
	return nil
}

// Restore loads persisted bills into the ledger and returns how many rooms are active.
// Bills for rooms outside the configured range are skipped, and line items
// that cannot belong to a valid bill are dropped by the ledger.
func (s *RoomService) Restore(ctx context.Context, loader OrderLoader) (int, error) {
	orders, err := loader.LoadOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("load orders: %w", err)
	}

	log := s.log(ctx)
	valid := make([]models.RoomOrder, 0, len(orders))
	for _, order := range orders {
		if err := s.ValidateRoom(order.RoomNumber); err != nil {
			log.WarnContext(ctx, "skipping restored bill for unconfigured room",
				slog.Int("room", order.RoomNumber),
			)
			continue
		}
		valid = append(valid, order)
	}

	if fixed := s.ledger.Load(valid); fixed > 0 {
		log.WarnContext(ctx, "dropped invalid line items from restored bills",
			slog.Int("items", fixed),
		)
	}
	metrics.SetActiveRooms(s.ledger.ActiveRooms())

	return s.ledger.ActiveRooms(), nil
}

// ListRooms returns a summary of every configured room, including rooms without a bill
func (s *RoomService) ListRooms(ctx context.Context) []RoomSummary {
	rooms := make([]RoomSummary, 0, s.cfg.RoomCount)
	for n := 1; n <= s.cfg.RoomCount; n++ {
		order, active := s.ledger.Get(n)
		rooms = append(rooms, RoomSummary{
			RoomNumber:  n,
			Active:      active,
			ItemCount:   order.ItemCount(),
			TotalAmount: order.TotalAmount(),
		})
	}
	return rooms
}

// GetRoom returns the room's bill, or the empty bill if it has none
func (s *RoomService) GetRoom(ctx context.Context, roomNumber int) (models.RoomOrder, error) {
	if err := s.ValidateRoom(roomNumber); err != nil {
		return models.RoomOrder{}, err
	}
	order, _ := s.ledger.Get(roomNumber)
	return order, nil
}

// AddItem adds one unit of the catalog product to the room's bill
func (s *RoomService) AddItem(ctx context.Context, roomNumber int, productID int64) (models.RoomOrder, error) {
	if err := s.ValidateRoom(roomNumber); err != nil {
		return models.RoomOrder{}, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return models.RoomOrder{}, fmt.Errorf("get product %d: %w", productID, err)
	}

	order, err := s.ledger.AddItem(roomNumber, *product)
	if err != nil {
		metrics.ObserveOperation("add_item", metrics.OutcomeRejected)
		return models.RoomOrder{}, err
	}
	metrics.ObserveOperation("add_item", metrics.OutcomeChanged)

	s.afterUpdate(ctx, order)

	s.log(ctx).InfoContext(ctx, "item added to room",
		slog.Int("room", roomNumber),
		slog.Int64("product_id", productID),
		slog.String("total", order.TotalAmount().String()),
	)

	return order, nil
}

// RemoveItem takes one unit of the product off the room's bill.
// Nothing to remove is not an error; the unchanged bill is returned.
func (s *RoomService) RemoveItem(ctx context.Context, roomNumber int, productID int64) (models.RoomOrder, error) {
	if err := s.ValidateRoom(roomNumber); err != nil {
		return models.RoomOrder{}, err
	}

	order, changed := s.ledger.RemoveItem(roomNumber, productID)
	if !changed {
		metrics.ObserveOperation("remove_item", metrics.OutcomeNoop)
		s.log(ctx).DebugContext(ctx, "nothing to remove",
			slog.Int("room", roomNumber),
			slog.Int64("product_id", productID),
		)
		return order, nil
	}
	metrics.ObserveOperation("remove_item", metrics.OutcomeChanged)

	s.afterUpdate(ctx, order)

	s.log(ctx).InfoContext(ctx, "item removed from room",
		slog.Int("room", roomNumber),
		slog.Int64("product_id", productID),
		slog.String("total", order.TotalAmount().String()),
	)

	return order, nil
}

// ClearRoom settles the room's bill. Clearing a room without a bill is a no-op.
func (s *RoomService) ClearRoom(ctx context.Context, roomNumber int) error {
	if err := s.ValidateRoom(roomNumber); err != nil {
		return err
	}

	settled, cleared := s.ledger.ClearRoom(roomNumber)
	if !cleared {
		metrics.ObserveOperation("clear_room", metrics.OutcomeNoop)
		return nil
	}
	metrics.ObserveOperation("clear_room", metrics.OutcomeChanged)
	metrics.SetActiveRooms(s.ledger.ActiveRooms())

	s.commit(ctx, roomNumber, nil)

	if s.publisher != nil {
		if err := s.publisher.PublishRoomCleared(ctx, settled); err != nil {
			metrics.SideEffectFailed("publish")
			s.log(ctx).ErrorContext(ctx, "failed to publish room.cleared event",
				slog.Int("room", roomNumber),
				slog.String("error", err.Error()),
			)
		}
	}

	s.log(ctx).InfoContext(ctx, "room bill cleared",
		slog.Int("room", roomNumber),
		slog.String("settled_total", settled.TotalAmount().String()),
	)

	return nil
}

// Bill renders the room's current bill
func (s *RoomService) Bill(ctx context.Context, roomNumber int) (Bill, error) {
	order, err := s.GetRoom(ctx, roomNumber)
	if err != nil {
		return Bill{}, err
	}
	return NewBill(order, s.cfg.CurrencySymbol, s.now()), nil
}

// PrintBill renders the room's bill and sends it to the printer
func (s *RoomService) PrintBill(ctx context.Context, roomNumber int) (Bill, error) {
	bill, err := s.Bill(ctx, roomNumber)
	if err != nil {
		return Bill{}, err
	}

	if err := s.printer.Print(ctx, bill); err != nil {
		metrics.SideEffectFailed("print")
		return Bill{}, fmt.Errorf("print bill: %w", err)
	}
	return bill, nil
}

// log returns the request-scoped logger when ctx carries one
func (s *RoomService) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, s.logger)
}

func (s *RoomService) afterUpdate(ctx context.Context, order models.RoomOrder) {
	metrics.SetActiveRooms(s.ledger.ActiveRooms())

	if order.IsEmpty() {
		s.commit(ctx, order.RoomNumber, nil)
	} else {
		s.commit(ctx, order.RoomNumber, &order)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRoomUpdated(ctx, order); err != nil {
			metrics.SideEffectFailed("publish")
			s.log(ctx).ErrorContext(ctx, "failed to publish room.updated event",
				slog.Int("room", order.RoomNumber),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (s *RoomService) commit(ctx context.Context, roomNumber int, order *models.RoomOrder) {
	if s.store == nil {
		return
	}
	if err := s.store.Commit(ctx, roomNumber, order); err != nil {
		metrics.SideEffectFailed("commit")
		s.log(ctx).ErrorContext(ctx, "failed to commit room order",
			slog.Int("room", roomNumber),
			slog.String("error", err.Error()),
		)
	}
}
