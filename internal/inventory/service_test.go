package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dhruvbhatia/bizdesk-backend/pkg/db/models"
	pkgerrors "github.com/dhruvbhatia/bizdesk-backend/pkg/errors"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/pagination"
)

type stubInventoryRepo struct {
	items    map[uint]*models.InventoryItem
	nextID   uint
	cleared  int
	batchLen int
}

func newStubRepo() *stubInventoryRepo {
	return &stubInventoryRepo{items: map[uint]*models.InventoryItem{}, nextID: 1}
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubInventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	item.ID = s.nextID
	s.nextID++
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *stubInventoryRepo) CreateBatch(ctx context.Context, items []models.InventoryItem) error {
	s.batchLen += len(items)
	for i := range items {
		item := items[i]
		item.ID = s.nextID
		s.nextID++
		s.items[item.ID] = &item
	}
	return nil
}

func (s *stubInventoryRepo) Update(ctx context.Context, item *models.InventoryItem) error {
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *stubInventoryRepo) Delete(ctx context.Context, id uint) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *stubInventoryRepo) FindByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (s *stubInventoryRepo) List(ctx context.Context, params ListQuery) ([]models.InventoryItem, *pagination.Cursor, error) {
	var out []models.InventoryItem
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil, nil
}

func (s *stubInventoryRepo) ListAll(ctx context.Context) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *stubInventoryRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.items)), nil
}

func (s *stubInventoryRepo) ClearAll(ctx context.Context) (int64, error) {
	n := int64(len(s.items))
	s.items = map[uint]*models.InventoryItem{}
	s.cleared++
	return n, nil
}

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(repo Repository) Service {
	return NewService(repo, noopTx{}, nil)
}

func TestServiceCreateValidation(t *testing.T) {
	svc := newTestService(newStubRepo())

	cases := []CreateItemInput{
		{ProductName: "   "},
		{ProductName: "X", Quantity: -1},
		{ProductName: "X", UnitPrice: decimal.RequireFromString("-1")},
	}
	for i, input := range cases {
		if _, err := svc.Create(context.Background(), input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("case %d: expected validation code, got %v", i, err)
		}
	}
}

func TestServiceCreateTrims(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), CreateItemInput{
		ProductName: "  Widget  ",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("3.50"),
		Category:    " Hardware ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.ProductName != "Widget" || item.Category != "Hardware" {
		t.Fatalf("expected trimmed fields, got %+v", item)
	}
}

func TestServiceUpdatePartial(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), CreateItemInput{ProductName: "Widget", Quantity: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	qty := 9
	updated, err := svc.Update(context.Background(), item.ID, UpdateItemInput{Quantity: &qty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 9 {
		t.Fatalf("expected quantity 9, got %d", updated.Quantity)
	}
	if updated.ProductName != "Widget" {
		t.Fatalf("name should be untouched, got %q", updated.ProductName)
	}
}

func TestServiceUpdateRejectsEmptyPatch(t *testing.T) {
	svc := newTestService(newStubRepo())
	if _, err := svc.Update(context.Background(), 1, UpdateItemInput{}); err == nil {
		t.Fatal("expected validation error for empty patch")
	}
}

func TestServiceUpdateMissingItem(t *testing.T) {
	svc := newTestService(newStubRepo())
	qty := 1
	_, err := svc.Update(context.Background(), 42, UpdateItemInput{Quantity: &qty})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceDeleteMissingItem(t *testing.T) {
	svc := newTestService(newStubRepo())
	err := svc.Delete(context.Background(), 42)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceListRejectsBadMatch(t *testing.T) {
	svc := newTestService(newStubRepo())
	_, _, err := svc.List(context.Background(), ListParams{Match: "fuzzy"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceListRejectsBadCursor(t *testing.T) {
	svc := newTestService(newStubRepo())
	_, _, err := svc.List(context.Background(), ListParams{Cursor: "!!not-base64!!"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceImportCSV(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	csv := "product,quantity,price\nGood,3,1.50\n,1,1.00\n"
	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 imported / 1 skipped, got %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Fatalf("expected row 3 error, got %+v", result.Errors)
	}
	if repo.batchLen != 1 {
		t.Fatalf("expected 1 row persisted, got %d", repo.batchLen)
	}
}

func TestServiceImportCSVReplaceClearsFirst(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	if _, err := svc.Create(context.Background(), CreateItemInput{ProductName: "Old"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	csv := "product,quantity\nNew,1\n"
	result, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), true)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !result.Replaced {
		t.Fatal("expected replaced flag")
	}
	if repo.cleared != 1 {
		t.Fatalf("expected one clear, got %d", repo.cleared)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected only imported rows to remain, got %d", len(repo.items))
	}
}

func TestServiceImportCSVRejectsHeaderOnly(t *testing.T) {
	svc := newTestService(newStubRepo())
	_, err := svc.ImportCSV(context.Background(), strings.NewReader("product,quantity\n"), false)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceExportCSV(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo)

	if _, err := svc.Create(context.Background(), CreateItemInput{
		ProductName: "Widget",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("9.99"),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	data, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "product_name,quantity,unit_price,category,description") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "Widget,2,9.99") {
		t.Fatalf("expected item row, got %q", out)
	}
}
