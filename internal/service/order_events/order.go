package order_events

import (
	"context"
	"errors"
	"fmt"

	"gathr/internal/entities"
)

type Service struct {
	repository    Repository
	statusFactory HandlerFactory
}

func New(repository Repository, statusFactory HandlerFactory) *Service {
	return &Service{
		repository:    repository,
		statusFactory: statusFactory,
	}
}

// ProcessOrderStatusChange выполняет реакцию на статус заказа. Событие сверяется с БД:
// если заказ уже ушёл дальше, реакцию на устаревший статус не запускаем,
// следующее событие придёт отдельно.
func (s *Service) ProcessOrderStatusChange(ctx context.Context, event entities.OrderStatusChanged) (*entities.Order, error) {
	if event.OrderID == "" || event.Status == "" {
		return nil, ErrMissingFields
	}

	order, err := s.repository.GetByID(ctx, event.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != event.Status {
		return order, fmt.Errorf("%w: event %s, stored %s", ErrStatusMismatch, event.Status, order.Status)
	}

	executeFn, err := s.statusFactory.GetHandler(order.Status)
	if err != nil {
		// статусы без реакции просто пропускаем
		if errors.Is(err, ErrUndefinedStatus) {
			return order, nil
		}
		return order, err
	}

	if err := executeFn(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}
