package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Apurer/freshcart-api/internal/domains/checkout/domain"
	"github.com/Apurer/freshcart-api/internal/domains/checkout/ports"
)

// FlowStore keeps checkout flows in process memory.
type FlowStore struct {
	mu    sync.RWMutex
	flows map[string]*domain.Flow
}

func NewFlowStore() *FlowStore {
	return &FlowStore{flows: map[string]*domain.Flow{}}
}

func (s *FlowStore) Get(_ context.Context, userID string) (*domain.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flow, ok := s.flows[userID]
	if !ok {
		return nil, ports.ErrFlowNotFound
	}
	return flow.Clone(), nil
}

func (s *FlowStore) Save(_ context.Context, flow *domain.Flow) error {
	if flow == nil || strings.TrimSpace(flow.UserID) == "" {
		return errors.New("flow requires a user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[flow.UserID] = flow.Clone()
	return nil
}

func (s *FlowStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flows[userID]; !ok {
		return ports.ErrFlowNotFound
	}
	delete(s.flows, userID)
	return nil
}

var _ ports.FlowStore = (*FlowStore)(nil)
