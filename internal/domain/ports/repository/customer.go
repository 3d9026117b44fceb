package repository

import (
	"context"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
)

type CustomerRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Customer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Customer, error)
	FindByExternalID(ctx context.Context, tx Tx, externalID string) (*model.Customer, error)
}

type PaymentMethodRepository interface {
	Save(ctx context.Context, tx Tx, pm *model.PaymentMethod) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PaymentMethod, error)
	ListByCustomer(ctx context.Context, tx Tx, customerID string) ([]*model.PaymentMethod, error)
}
