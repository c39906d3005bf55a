package testhelpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// FakeLLM is an OpenAI-compatible chat-completions server returning a fixed message content.
type FakeLLM struct {
	*httptest.Server
	Calls   atomic.Int32
	content atomic.Value
	status  atomic.Int32
}

// NewFakeLLM starts a fake completions server. It is closed when the test ends.
func NewFakeLLM(t *testing.T, content string) *FakeLLM {
	t.Helper()
	f := &FakeLLM{}
	f.content.Store(content)
	f.status.Store(http.StatusOK)
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.Calls.Add(1)
		if code := int(f.status.Load()); code != http.StatusOK {
			http.Error(w, `{"error":"upstream failure"}`, code)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": f.content.Load().(string)}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

// SetContent changes the message content returned by later calls.
func (f *FakeLLM) SetContent(content string) { f.content.Store(content) }

// SetStatus makes later calls fail with the given HTTP status.
func (f *FakeLLM) SetStatus(code int) { f.status.Store(int32(code)) }

// CreateTestUser inserts a user with the given password and a default profile.
func CreateTestUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := db.Create(models.DefaultProfile(user.ID)).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return user
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// MemoryDraftStore is an in-process DraftStore.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]service.MealDraft
	Err    error
}

// Ensure MemoryDraftStore implements service.DraftStore
var _ service.DraftStore = (*MemoryDraftStore)(nil)

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: map[string]service.MealDraft{}}
}

func (s *MemoryDraftStore) SaveDraft(ctx context.Context, draft *service.MealDraft) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	s.drafts[draft.ID] = *draft
	return nil
}

func (s *MemoryDraftStore) GetDraft(ctx context.Context, id string) (*service.MealDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, fmt.Errorf("%w: draft %s", service.ErrNotFound, id)
	}
	return &d, nil
}

func (s *MemoryDraftStore) DeleteDraft(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

// Len returns the number of stored drafts.
func (s *MemoryDraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// RecordingNotifier collects published events.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []service.EntryEvent
}

func (n *RecordingNotifier) Publish(userID uuid.UUID, event service.EntryEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, event)
}

// Count returns the number of events received.
func (n *RecordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Events)
}
