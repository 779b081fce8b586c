package service

import (
	"context"

	"jenny-assistant-be/internal/dto"
	"jenny-assistant-be/pkg/mem0"
)

type MemoryStore interface {
	Add(ctx context.Context, text, userID string) (map[string]interface{}, error)
	Search(ctx context.Context, query, userID string, limit int) (*mem0.SearchResult, error)
	Reset(ctx context.Context, userID string) error
}

type IMemoryService interface {
	Remember(ctx context.Context, req *dto.RememberRequest) (map[string]interface{}, error)
	Search(ctx context.Context, userId, query string, limit int) ([]dto.MemoryItemResponse, error)
	// Forget drops every stored memory of the user.
	Forget(ctx context.Context, userId string) error
}

type memoryService struct {
	memory MemoryStore
}

func NewMemoryService(memory MemoryStore) IMemoryService {
	return &memoryService{memory: memory}
}

func (s *memoryService) Remember(ctx context.Context, req *dto.RememberRequest) (map[string]interface{}, error) {
	return s.memory.Add(ctx, req.Text, req.UserId)
}

func (s *memoryService) Search(ctx context.Context, userId, query string, limit int) ([]dto.MemoryItemResponse, error) {
	if limit <= 0 {
		limit = 5
	}
	res, err := s.memory.Search(ctx, query, userId, limit)
	if err != nil {
		return nil, err
	}

	items := res.Items()
	out := make([]dto.MemoryItemResponse, 0, len(items))
	for _, m := range items {
		out = append(out, dto.MemoryItemResponse{Id: m.ID, Content: m.Content(), Score: m.Score})
	}
	return out, nil
}

func (s *memoryService) Forget(ctx context.Context, userId string) error {
	return s.memory.Reset(ctx, userId)
}
