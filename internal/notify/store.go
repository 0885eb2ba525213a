package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"gharsewa/internal/general/contracts"
	"gharsewa/internal/general/logger"
	"gharsewa/internal/realtime"
)

// Store is the in-memory notification list fed by the notification:*
// channels, optionally mirrored to a key-value store so the list survives a
// client restart. A nil mirror client means memory only; the mirror is
// best-effort and never blocks or fails an update.
type Store struct {
	log    *logger.Logger
	router *realtime.Router
	mirror *redis.Client
	key    string

	mu    sync.Mutex
	order []string // newest first
	items map[string]contracts.NotificationPayload
	subs  []realtime.Subscription
}

// NewStore creates an empty store for one user's notification list.
func NewStore(router *realtime.Router, log *logger.Logger, mirror *redis.Client, userID string) *Store {
	return &Store{
		log:    log,
		router: router,
		mirror: mirror,
		key:    "gharsewa:notifications:" + userID,
		items:  make(map[string]contracts.NotificationPayload),
	}
}

// Attach subscribes to the notification channels.
func (s *Store) Attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) > 0 {
		return
	}
	s.subs = append(s.subs,
		s.router.On(contracts.ChannelNotificationNew, s.handleNew),
		s.router.On(contracts.ChannelNotificationRead, s.handleRead),
		s.router.On(contracts.ChannelNotificationDeleted, s.handleDeleted),
	)
}

// Detach removes the subscriptions. The cached list is kept.
func (s *Store) Detach() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, sub := range subs {
		s.router.Off(sub)
	}
}

// Seed replaces the cache with an authoritative list, typically the result
// of the initial REST fetch.
func (s *Store) Seed(list []contracts.NotificationPayload) {
	s.mu.Lock()
	s.order = s.order[:0]
	s.items = make(map[string]contracts.NotificationPayload, len(list))
	for _, item := range list {
		if item.ID == "" {
			continue
		}
		s.order = append(s.order, item.ID)
		s.items[item.ID] = item
	}
	snapshot := s.listLocked()
	s.mu.Unlock()
	s.mirrorWrite(snapshot)
}

// List returns the notifications, newest first.
func (s *Store) List() []contracts.NotificationPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

// UnreadCount returns how many cached notifications are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		if !item.Read {
			count++
		}
	}
	return count
}

func (s *Store) listLocked() []contracts.NotificationPayload {
	out := make([]contracts.NotificationPayload, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

func (s *Store) handleNew(data json.RawMessage) {
	payload, err := contracts.DecodeNotification(data)
	if err != nil {
		return
	}
	s.mu.Lock()
	if _, exists := s.items[payload.ID]; !exists {
		s.order = append([]string{payload.ID}, s.order...)
	}
	s.items[payload.ID] = payload
	snapshot := s.listLocked()
	s.mu.Unlock()
	s.mirrorWrite(snapshot)
}

func (s *Store) handleRead(data json.RawMessage) {
	payload, err := contracts.DecodeNotification(data)
	if err != nil {
		return
	}
	s.mu.Lock()
	if item, exists := s.items[payload.ID]; exists {
		item.Read = true
		s.items[payload.ID] = item
	}
	snapshot := s.listLocked()
	s.mu.Unlock()
	s.mirrorWrite(snapshot)
}

func (s *Store) handleDeleted(data json.RawMessage) {
	payload, err := contracts.DecodeNotification(data)
	if err != nil {
		return
	}
	s.mu.Lock()
	if _, exists := s.items[payload.ID]; exists {
		delete(s.items, payload.ID)
		for i, id := range s.order {
			if id == payload.ID {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	}
	snapshot := s.listLocked()
	s.mu.Unlock()
	s.mirrorWrite(snapshot)
}

// mirrorWrite pushes the list to the key-value mirror, best effort.
func (s *Store) mirrorWrite(list []contracts.NotificationPayload) {
	if s.mirror == nil {
		return
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.mirror.Set(ctx, s.key, encoded, 0).Err(); err != nil {
		s.log.Debug(ctx, "mirror_write_failed", "Notification mirror write failed", map[string]any{"err": err.Error()})
	}
}

// Restore loads the mirrored list, if any. Memory-only stores return false.
func (s *Store) Restore() bool {
	if s.mirror == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	raw, err := s.mirror.Get(ctx, s.key).Bytes()
	if err != nil {
		return false
	}
	var list []contracts.NotificationPayload
	if err := json.Unmarshal(raw, &list); err != nil {
		return false
	}
	s.mu.Lock()
	s.order = s.order[:0]
	s.items = make(map[string]contracts.NotificationPayload, len(list))
	for _, item := range list {
		if item.ID == "" {
			continue
		}
		s.order = append(s.order, item.ID)
		s.items[item.ID] = item
	}
	s.mu.Unlock()
	return true
}
