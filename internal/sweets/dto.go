package sweets

import (
	"time"

	"github.com/angelmondragon/sweetshop-backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// SweetDTO is the JSON shape of a catalog item.
type SweetDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateSweetRequest accepts price and quantity as JSON numbers or numeric strings.
type CreateSweetRequest struct {
	Name     string           `json:"name" validate:"required"`
	Category string           `json:"category" validate:"required"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`
}

func (CreateSweetRequest) ValidationMessage() string {
	return allFieldsRequiredMessage
}

// UpdateSweetRequest carries a partial update; nil fields are left untouched.
type UpdateSweetRequest struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *decimal.Decimal `json:"quantity"`
}

func (r UpdateSweetRequest) empty() bool {
	return r.Name == nil && r.Category == nil && r.Price == nil && r.Quantity == nil
}

type RestockRequest struct {
	Quantity *decimal.Decimal `json:"quantity"`
}

func FromModel(s *models.Sweet) *SweetDTO {
	if s == nil {
		return nil
	}
	return &SweetDTO{
		ID:        s.ID,
		Name:      s.Name,
		Category:  s.Category,
		Price:     s.Price.InexactFloat64(),
		Quantity:  s.Quantity,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromModels(list []models.Sweet) []SweetDTO {
	out := make([]SweetDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
