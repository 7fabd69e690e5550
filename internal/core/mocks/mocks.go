package mocks

import (
	"context"

	"github.com/lorrc/ticket-board/internal/core/domain"
	"github.com/lorrc/ticket-board/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockTicketSnapshotStore is a mock implementation of ports.TicketSnapshotStore
type MockTicketSnapshotStore struct {
	mock.Mock
}

var _ ports.TicketSnapshotStore = (*MockTicketSnapshotStore)(nil)

func NewMockTicketSnapshotStore() *MockTicketSnapshotStore {
	return &MockTicketSnapshotStore{}
}

func (m *MockTicketSnapshotStore) Load(ctx context.Context) ([]*domain.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketSnapshotStore) Save(ctx context.Context, tickets []*domain.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

// MockTicketService is a mock implementation of ports.TicketService
type MockTicketService struct {
	mock.Mock
}

var _ ports.TicketService = (*MockTicketService)(nil)

func NewMockTicketService() *MockTicketService {
	return &MockTicketService{}
}

func (m *MockTicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketService) ListTickets(ctx context.Context) []*domain.Ticket {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.Ticket)
}

func (m *MockTicketService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockTicketService) DeleteTicket(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

func (m *MockTicketService) AddComment(ctx context.Context, params ports.AddCommentParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockTicketService) DeleteComment(ctx context.Context, params ports.DeleteCommentParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockTicketService) PersistenceWarning() (string, bool) {
	args := m.Called()
	return args.String(0), args.Bool(1)
}

func (m *MockTicketService) PersistenceStatus() ports.PersistenceStatus {
	args := m.Called()
	return args.Get(0).(ports.PersistenceStatus)
}
