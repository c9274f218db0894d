package usage

import (
	"context"
	"sync"
)

type InMemoryRepository struct {
	mu     sync.Mutex
	counts map[string]int // userID + "|" + day
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{counts: make(map[string]int)}
}

func (r *InMemoryRepository) IncrementVoice(ctx context.Context, userID, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userID + "|" + day
	r.counts[key]++
	return r.counts[key], nil
}

func (r *InMemoryRepository) VoiceCount(ctx context.Context, userID, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.counts[userID+"|"+day], nil
}
