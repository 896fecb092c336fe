package sweets

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/angelmondragon/sweetshop-backend/pkg/db"
	"github.com/angelmondragon/sweetshop-backend/pkg/db/models"
	"github.com/angelmondragon/sweetshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sweetshop-backend/pkg/errors"
	"github.com/angelmondragon/sweetshop-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	allFieldsRequiredMessage = "All fields required"
	noFieldsMessage          = "No fields to update"
	notFoundMessage          = "Sweet not found"
	outOfStockMessage        = "Out of stock"
	invalidQuantityMessage   = "Valid quantity required"
	quantityTooLargeMessage  = "quantity is too large"

	// quantity is a 32-bit INTEGER column.
	maxQuantity = math.MaxInt32
)

// numeric(10,2) holds at most eight integer digits.
var (
	maxPrice         = decimal.New(1, 8)
	maxQuantityValue = decimal.NewFromInt(maxQuantity)
)

// Service exposes catalog and stock operations.
type Service interface {
	List(ctx context.Context) ([]SweetDTO, error)
	Search(ctx context.Context, filter SearchFilter) ([]SweetDTO, error)
	Get(ctx context.Context, id int64) (*SweetDTO, error)
	Create(ctx context.Context, req CreateSweetRequest) (*SweetDTO, error)
	Update(ctx context.Context, id int64, req UpdateSweetRequest) (*SweetDTO, error)
	Delete(ctx context.Context, id int64) error
	Purchase(ctx context.Context, id int64) (*SweetDTO, error)
	Restock(ctx context.Context, id int64, req RestockRequest) (*SweetDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryRecorder interface {
	IncPurchase()
	IncPurchaseRejection(reason enums.PurchaseRejection)
	AddRestocked(units int)
}

// ServiceParams bundles the dependencies required to build a sweets service.
type ServiceParams struct {
	Repo     *Repository
	TxRunner txRunner
	Metrics  inventoryRecorder
}

type service struct {
	repo    *Repository
	tx      txRunner
	metrics inventoryRecorder
	now     func() time.Time
}

// NewService constructs a sweets service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sweets repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	recorder := params.Metrics
	if recorder == nil {
		recorder = metrics.NewInventoryMetrics(nil)
	}
	return &service{
		repo:    params.Repo,
		tx:      params.TxRunner,
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context) ([]SweetDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sweets")
	}
	return fromModels(list), nil
}

func (s *service) Search(ctx context.Context, filter SearchFilter) ([]SweetDTO, error) {
	list, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search sweets")
	}
	return fromModels(list), nil
}

func (s *service) Get(ctx context.Context, id int64) (*SweetDTO, error) {
	sweet, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(sweet), nil
}

func (s *service) Create(ctx context.Context, req CreateSweetRequest) (*SweetDTO, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	if name == "" || category == "" || req.Price == nil || req.Quantity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, allFieldsRequiredMessage)
	}
	price, err := validatePrice(*req.Price)
	if err != nil {
		return nil, err
	}
	quantity, err := validateQuantity(*req.Quantity)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sweet := &models.Sweet{
		Name:      name,
		Category:  category,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, sweet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sweet")
	}
	return FromModel(sweet), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateSweetRequest) (*SweetDTO, error) {
	if req.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, noFieldsMessage)
	}

	columns := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		columns["name"] = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be blank")
		}
		columns["category"] = category
	}
	if req.Price != nil {
		price, err := validatePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		columns["price"] = price
	}
	if req.Quantity != nil {
		quantity, err := validateQuantity(*req.Quantity)
		if err != nil {
			return nil, err
		}
		columns["quantity"] = quantity
	}
	columns["updated_at"] = s.now()

	var updated *models.Sweet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.Update(ctx, id, columns)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sweet")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		updated, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete succeeds whether or not the row existed.
func (s *service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete sweet")
	}
	return nil
}

func (s *service) Purchase(ctx context.Context, id int64) (*SweetDTO, error) {
	var (
		purchased *models.Sweet
		rejection enums.PurchaseRejection
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.DecrementStock(ctx, id, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "purchase sweet")
		}
		if rows == 0 {
			exists, err := repo.Exists(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup sweet")
			}
			if !exists {
				rejection = enums.PurchaseRejectionNotFound
				return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
			}
			rejection = enums.PurchaseRejectionOutOfStock
			return pkgerrors.New(pkgerrors.CodeOutOfStock, outOfStockMessage)
		}
		purchased, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		if rejection != "" {
			s.metrics.IncPurchaseRejection(rejection)
		}
		return nil, err
	}
	s.metrics.IncPurchase()
	return FromModel(purchased), nil
}

func (s *service) Restock(ctx context.Context, id int64, req RestockRequest) (*SweetDTO, error) {
	if req.Quantity == nil || !req.Quantity.IsInteger() || !req.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidQuantityMessage)
	}
	if req.Quantity.GreaterThan(maxQuantityValue) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, quantityTooLargeMessage)
	}
	units := int(req.Quantity.IntPart())

	var restocked *models.Sweet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.IncrementStock(ctx, id, units, maxQuantity, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock sweet")
		}
		if rows == 0 {
			exists, err := repo.Exists(ctx, id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup sweet")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
			}
			return pkgerrors.New(pkgerrors.CodeValidation, quantityTooLargeMessage)
		}
		restocked, err = s.load(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AddRestocked(units)
	return FromModel(restocked), nil
}

func (s *service) load(ctx context.Context, repo *Repository, id int64) (*models.Sweet, error) {
	sweet, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sweet")
	}
	return sweet, nil
}

func validatePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	rounded := price.Round(2)
	if rounded.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price is too large")
	}
	return rounded, nil
}

func validateQuantity(quantity decimal.Decimal) (int, error) {
	if !quantity.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a whole number")
	}
	if quantity.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if quantity.GreaterThan(maxQuantityValue) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, quantityTooLargeMessage)
	}
	return int(quantity.IntPart()), nil
}
