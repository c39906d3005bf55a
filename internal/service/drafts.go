package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DraftTTL is how long an analysed meal stays available for confirmation.
const DraftTTL = 24 * time.Hour

// MealDraft is an analysed meal that has not been saved yet.
type MealDraft struct {
	ID          string       `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Description string       `json:"description"`
	Estimate    MealEstimate `json:"estimate"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RedisDraftStore stores drafts as JSON strings with a TTL.
type RedisDraftStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// Ensure RedisDraftStore implements DraftStore
var _ DraftStore = (*RedisDraftStore)(nil)

func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{redis: client, ttl: DraftTTL}
}

func draftKey(id string) string {
	return fmt.Sprintf("estimate:draft:%s", id)
}

// SaveDraft assigns an id when the draft has none and stores it.
func (s *RedisDraftStore) SaveDraft(ctx context.Context, draft *MealDraft) error {
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := s.redis.Set(ctx, draftKey(draft.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft to Redis: %w", err)
	}
	return nil
}

// GetDraft retrieves a draft. Missing or expired drafts return ErrNotFound.
func (s *RedisDraftStore) GetDraft(ctx context.Context, id string) (*MealDraft, error) {
	data, err := s.redis.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: draft %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft from Redis: %w", err)
	}

	var draft MealDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

func (s *RedisDraftStore) DeleteDraft(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from Redis: %w", err)
	}
	return nil
}
