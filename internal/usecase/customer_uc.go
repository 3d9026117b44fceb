package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/infra/logging"
)

// Compile-time check
var _ CustomerUseCase = (*customerUC)(nil)

type CustomerUseCase interface {
	// Register creates the customer or returns the existing one for the same external id.
	Register(ctx context.Context, email, companyName, externalID string) (*model.Customer, error)
	Get(ctx context.Context, id string) (*model.Customer, error)
	// AddPaymentMethod stores a gateway-saved card and records ADD_CARD.
	AddPaymentMethod(ctx context.Context, pm *model.PaymentMethod, sessionID *string) (*model.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context, customerID string) ([]*model.PaymentMethod, error)
}

type customerUC struct {
	customers repository.CustomerRepository
	methods   repository.PaymentMethodRepository
	activity  *ActivityRecorder
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewCustomerUseCase(customers repository.CustomerRepository, methods repository.PaymentMethodRepository, activity *ActivityRecorder, tm repository.TransactionManager, logger *zerolog.Logger) *customerUC {
	return &customerUC{customers: customers, methods: methods, activity: activity, tm: tm, log: logger}
}

func (u *customerUC) Register(ctx context.Context, email, companyName, externalID string) (*model.Customer, error) {
	defer logging.TraceDuration(u.log, "CustomerUC.Register")()

	var customer *model.Customer
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.customers.FindByExternalID(ctx, tx, externalID)
		if err == nil {
			customer = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		c, err := model.NewCustomer("", email, companyName, externalID)
		if err != nil {
			return err
		}
		if err := u.customers.Save(ctx, tx, c); err != nil {
			return err
		}
		customer = c
		u.log.Info().Str("customer_id", c.ID).Msg("customer registered")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (u *customerUC) Get(ctx context.Context, id string) (*model.Customer, error) {
	defer logging.TraceDuration(u.log, "CustomerUC.Get")()
	return u.customers.FindByID(ctx, repository.NoTX, id)
}

func (u *customerUC) AddPaymentMethod(ctx context.Context, pm *model.PaymentMethod, sessionID *string) (*model.PaymentMethod, error) {
	defer logging.TraceDuration(u.log, "CustomerUC.AddPaymentMethod")()
	if pm.CustomerID == "" || pm.ProcessorMethodID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	if pm.ID == "" {
		pm.ID = uuid.NewString()
	}
	if pm.Status == "" {
		pm.Status = model.PaymentMethodStatusActive
	}
	if pm.Type == "" {
		pm.Type = "card"
	}
	pm.CreatedAt, pm.UpdatedAt = now, now

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.customers.FindByID(ctx, tx, pm.CustomerID); err != nil {
			return err
		}
		if err := u.methods.Save(ctx, tx, pm); err != nil {
			return err
		}
		_, err := u.activity.Record(ctx, tx, Activity{
			CustomerID: pm.CustomerID,
			SessionID:  sessionID,
			Type:       model.ActivityAddCard,
			Metadata: map[string]interface{}{
				"paymentMethodId": pm.ID,
				"brand":           pm.Brand,
				"last4":           pm.Last4,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (u *customerUC) ListPaymentMethods(ctx context.Context, customerID string) ([]*model.PaymentMethod, error) {
	return u.methods.ListByCustomer(ctx, repository.NoTX, customerID)
}
