package sweets

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/sweetshop-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SearchFilter narrows the catalog; zero values leave a field unconstrained.
type SearchFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Repository persists sweets through GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a repository to the provided connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository scoped to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, sweet *models.Sweet) error {
	return r.db.WithContext(ctx).Create(sweet).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Sweet, error) {
	var sweet models.Sweet
	if err := r.db.WithContext(ctx).First(&sweet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sweet, nil
}

func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Sweet{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns the full catalog ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Sweet, error) {
	return r.Search(ctx, SearchFilter{})
}

// Search applies every non-empty filter conjunctively.
func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]models.Sweet, error) {
	query := r.db.WithContext(ctx).Model(&models.Sweet{})
	if filter.Name != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(filter.Name))+"%")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	sweets := make([]models.Sweet, 0)
	if err := query.Order("name ASC").Order("id ASC").Find(&sweets).Error; err != nil {
		return nil, err
	}
	return sweets, nil
}

// Update writes the given columns and reports how many rows matched.
func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Sweet{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected, res.Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Sweet{})
	return res.RowsAffected, res.Error
}

// DecrementStock removes one unit only while stock remains; zero rows means
// the sweet is missing or sold out.
func (r *Repository) DecrementStock(ctx context.Context, id int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sweet{}).
		Where("id = ? AND quantity > 0", id).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - 1"),
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

// IncrementStock adds units only while the result stays within ceiling; zero
// rows means the sweet is missing or the sum would exceed it.
func (r *Repository) IncrementStock(ctx context.Context, id int64, units, ceiling int, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sweet{}).
		Where("id = ? AND quantity <= ?", id, ceiling-units).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", units),
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
