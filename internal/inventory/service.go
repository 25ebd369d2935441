package inventory

import (
	"context"
	"io"
	"strings"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/pagination"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service handles inventory business rules.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error)
	Get(ctx context.Context, id uint) (*models.InventoryItem, error)
	Update(ctx context.Context, id uint, input UpdateItemInput) (*models.InventoryItem, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]models.InventoryItem, string, error)
	ImportCSV(ctx context.Context, r io.Reader, replace bool) (*ImportResult, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	Snapshot(ctx context.Context) ([]models.InventoryItem, error)
	ClearAll(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
	tx   TxRunner
	logg *logger.Logger
}

// NewService constructs an inventory service.
func NewService(repo Repository, tx TxRunner, logg *logger.Logger) Service {
	return &service{repo: repo, tx: tx, logg: logg}
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(input.ProductName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name is required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.UnitPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be negative")
	}

	item := &models.InventoryItem{
		ProductName: name,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "insert inventory item")
	}
	return item, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load inventory item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return item, nil
}

func (s *service) Update(ctx context.Context, id uint, input UpdateItemInput) (*models.InventoryItem, error) {
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ProductName != nil {
		name := strings.TrimSpace(*input.ProductName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_name cannot be empty")
		}
		item.ProductName = name
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		item.Quantity = *input.Quantity
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit_price cannot be negative")
		}
		item.UnitPrice = *input.UnitPrice
	}
	if input.Category != nil {
		item.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update inventory item")
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete inventory item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.InventoryItem, string, error) {
	match := params.Match
	if match == "" {
		match = MatchPrefix
	}
	if !match.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "match must be prefix, exact or contains")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	items, next, err := s.repo.List(ctx, ListQuery{
		Query:  params.Query,
		Match:  match,
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list inventory items")
	}

	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return items, nextCursor, nil
}

func (s *service) ImportCSV(ctx context.Context, r io.Reader, replace bool) (*ImportResult, error) {
	parsed, err := ParseCSV(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse csv upload")
	}
	if len(parsed.Items) == 0 && len(parsed.RowErrors) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv contains no data rows")
	}

	if len(parsed.RowErrors) > 0 && s.logg != nil {
		var combined error
		for _, rowErr := range parsed.RowErrors {
			combined = multierr.Append(combined, pkgerrors.New(pkgerrors.CodeValidation, rowErr.Reason))
		}
		s.logg.Warn(ctx, "csv import skipped rows: "+combined.Error())
	}

	result := &ImportResult{
		Imported: len(parsed.Items),
		Skipped:  len(parsed.RowErrors),
		Replaced: replace,
		Errors:   parsed.RowErrors,
		Header:   parsed.Header,
		Samples:  parsed.Samples,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if replace {
			if _, err := repo.ClearAll(ctx); err != nil {
				return err
			}
		}
		return repo.CreateBatch(ctx, parsed.Items)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persist imported items")
	}

	return result, nil
}

func (s *service) ExportCSV(ctx context.Context) ([]byte, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load inventory for export")
	}
	out, err := WriteCSV(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render csv export")
	}
	return out, nil
}

func (s *service) Snapshot(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load inventory snapshot")
	}
	return items, nil
}

func (s *service) ClearAll(ctx context.Context) (int64, error) {
	removed, err := s.repo.ClearAll(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "clear inventory")
	}
	return removed, nil
}
