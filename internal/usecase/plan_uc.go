package usecase

import (
	"context"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

// CatalogUseCase serves plans and products.
type CatalogUseCase struct {
	plans    repository.PlanRepository
	products repository.ProductRepository
}

// NewCatalogUseCase constructs a CatalogUseCase.
func NewCatalogUseCase(plans repository.PlanRepository, products repository.ProductRepository) *CatalogUseCase {
	return &CatalogUseCase{plans: plans, products: products}
}

// CreatePlan saves or updates a plan.
func (uc *CatalogUseCase) CreatePlan(ctx context.Context, plan *model.Plan) error {
	if _, err := model.NewPlan(plan.ID, plan.Name, plan.Period, plan.PriceCents, plan.Currency); err != nil {
		return err
	}
	return uc.plans.Save(ctx, repository.NoTX, plan)
}

// GetPlan retrieves a plan by ID.
func (uc *CatalogUseCase) GetPlan(ctx context.Context, id string) (*model.Plan, error) {
	return uc.plans.FindByID(ctx, repository.NoTX, id)
}

// ListPlans returns active plans.
func (uc *CatalogUseCase) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	return uc.plans.ListActive(ctx, repository.NoTX)
}

// ListProducts returns all products.
func (uc *CatalogUseCase) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return uc.products.ListAll(ctx, repository.NoTX)
}
