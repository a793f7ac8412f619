package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Lixing-Zhang/room-orders/internal/models"
)

// DefaultKeyPrefix namespaces all keys written by the order store
const DefaultKeyPrefix = "roomorders:"

const scanBatch = 100

// OrderStore persists each room's active bill as a JSON value under its own key.
// A cleared room is stored as the absence of its key.
type OrderStore struct {
	client *redis.Client
	prefix string
}

// NewOrderStore creates a Redis-backed order store
func NewOrderStore(client *redis.Client, prefix string) *OrderStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &OrderStore{
		client: client,
		prefix: prefix,
	}
}

func (s *OrderStore) key(roomNumber int) string {
	return s.prefix + "room:" + strconv.Itoa(roomNumber)
}

// Commit writes the room's bill. A nil or empty order deletes the key.
func (s *OrderStore) Commit(ctx context.Context, roomNumber int, order *models.RoomOrder) error {
	key := s.key(roomNumber)

	if order == nil || order.IsEmpty() {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis del room order: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal room order: %w", err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set room order: %w", err)
	}
	return nil
}

// LoadOrders returns every stored bill. Totals are recomputed from the stored items on decode.
func (s *OrderStore) LoadOrders(ctx context.Context) ([]models.RoomOrder, error) {
	var (
		orders []models.RoomOrder
		cursor uint64
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"room:*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan room orders: %w", err)
		}

		for _, key := range keys {
			order, err := s.get(ctx, key)
			if err != nil {
				return nil, err
			}
			if order != nil {
				orders = append(orders, *order)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return orders, nil
}

func (s *OrderStore) get(ctx context.Context, key string) (*models.RoomOrder, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			// deleted between SCAN and GET
			return nil, nil
		}
		return nil, fmt.Errorf("redis get room order: %w", err)
	}

	var order models.RoomOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("unmarshal room order %s: %w", key, err)
	}

	if want := strings.TrimPrefix(key, s.prefix+"room:"); want != strconv.Itoa(order.RoomNumber) {
		return nil, fmt.Errorf("room order %s holds room %d", key, order.RoomNumber)
	}

	return &order, nil
}

// Ping checks the Redis connection
func (s *OrderStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
