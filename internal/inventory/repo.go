package inventory

import (
	"context"
	"strings"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository handles inventory persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	CreateBatch(ctx context.Context, items []models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, id uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	List(ctx context.Context, params ListQuery) ([]models.InventoryItem, *pagination.Cursor, error)
	ListAll(ctx context.Context) ([]models.InventoryItem, error)
	Count(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
}

// ListQuery configures inventory list queries.
type ListQuery struct {
	Query  string
	Match  MatchMode
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) CreateBatch(ctx context.Context, items []models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 200).Error
}

func (r *repository) Update(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.InventoryItem{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.InventoryItem, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})

	if term := strings.TrimSpace(params.Query); term != "" {
		switch params.Match {
		case MatchExact:
			query = query.Where("LOWER(product_name) = LOWER(?)", term)
		case MatchContains:
			query = query.Where(`LOWER(product_name) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(term)+"%")
		default:
			query = query.Where(`LOWER(product_name) LIKE LOWER(?) ESCAPE '\'`, escapeLike(term)+"%")
		}
	}
	if params.Cursor != nil {
		query = query.Where("id > ?", params.Cursor.ID)
	}

	var items []models.InventoryItem
	if err := query.Order("id ASC").Limit(pagination.LimitWithBuffer(limit)).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > limit {
		items = items[:limit]
		last := items[limit-1]
		return items, &pagination.Cursor{ID: last.ID}, nil
	}

	return items, nil, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InventoryItem{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ClearAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.InventoryItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// escapeLike neutralizes LIKE metacharacters in user input. The queries
// that use it declare ESCAPE '\'; SQLite has no default escape character.
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return replacer.Replace(term)
}
