package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stockledger/stockledger/internal/shared"
)

// Service coordinates item master data operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all items ordered by name.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Get returns a single item by id.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode returns a single item by its unique code.
func (s *Service) GetByCode(ctx context.Context, code string) (Item, error) {
	return s.repo.GetByCode(ctx, strings.TrimSpace(code))
}

// Create registers a new item. Opening stock doubles as the starting
// available quantity; after creation the ledger owns available quantity.
func (s *Service) Create(ctx context.Context, input CreateInput) (Item, error) {
	if err := validateInput(input.ItemCode, input.Name, input.Category); err != nil {
		return Item{}, err
	}
	if input.OpeningStock < 0 {
		return Item{}, errors.New("catalog: opening stock must not be negative")
	}
	item := Item{
		ItemCode:       strings.TrimSpace(input.ItemCode),
		Name:           strings.TrimSpace(input.Name),
		Category:       input.Category,
		PurchasePrice:  input.PurchasePrice,
		WholesalePrice: input.WholesalePrice,
		RetailPrice:    input.RetailPrice,
		OpeningStock:   input.OpeningStock,
		AvailableQty:   input.OpeningStock,
	}
	return s.repo.Create(ctx, item)
}

// BulkCreate registers many items, collecting per-row rejections instead of
// aborting the batch. Duplicates inside the batch are rejected the same way
// as duplicates against the database.
func (s *Service) BulkCreate(ctx context.Context, inputs []CreateInput) (BulkCreateResult, error) {
	result := BulkCreateResult{Skipped: []SkippedItem{}}
	seenCodes := make(map[string]bool, len(inputs))
	seenNames := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		code := strings.TrimSpace(input.ItemCode)
		name := strings.TrimSpace(input.Name)
		if seenCodes[code] {
			result.Skipped = append(result.Skipped, SkippedItem{ItemCode: code, Reason: "duplicate item code in batch"})
			continue
		}
		if seenNames[name] {
			result.Skipped = append(result.Skipped, SkippedItem{ItemCode: code, Reason: "duplicate item name in batch"})
			continue
		}
		seenCodes[code] = true
		seenNames[name] = true

		if _, err := s.Create(ctx, input); err != nil {
			result.Skipped = append(result.Skipped, SkippedItem{ItemCode: code, Reason: reasonFor(err)})
			continue
		}
		result.Created++
	}
	return result, nil
}

// Update edits item master data. A change to any price point appends a price
// history snapshot before the update lands.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	if err := validateInput(input.ItemCode, input.Name, input.Category); err != nil {
		return err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if priceChanged(current.PurchasePrice, input.PurchasePrice) ||
		priceChanged(current.WholesalePrice, input.WholesalePrice) ||
		priceChanged(current.RetailPrice, input.RetailPrice) {
		change := PriceChange{
			ItemID:         id,
			PurchasePrice:  input.PurchasePrice,
			WholesalePrice: input.WholesalePrice,
			RetailPrice:    input.RetailPrice,
		}
		if err := s.repo.InsertPriceChange(ctx, change); err != nil {
			return fmt.Errorf("catalog: record price change: %w", err)
		}
	}
	item := Item{
		ItemCode:       strings.TrimSpace(input.ItemCode),
		Name:           strings.TrimSpace(input.Name),
		Category:       input.Category,
		PurchasePrice:  input.PurchasePrice,
		WholesalePrice: input.WholesalePrice,
		RetailPrice:    input.RetailPrice,
	}
	return s.repo.Update(ctx, id, item)
}

// Delete removes an item and its dependent records.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// LowStock lists items strictly below threshold with stock remaining,
// lowest first.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]Item, error) {
	if threshold <= 0 {
		threshold = 10
	}
	return s.repo.LowStock(ctx, threshold, 10)
}

// PriceHistory lists recorded price snapshots for an item, newest first.
func (s *Service) PriceHistory(ctx context.Context, itemID int64) ([]PriceChange, error) {
	return s.repo.ListPriceChanges(ctx, itemID, 50)
}

func validateInput(code, name string, category Category) error {
	if strings.TrimSpace(code) == "" {
		return errors.New("catalog: item code is required")
	}
	if strings.TrimSpace(name) == "" {
		return errors.New("catalog: item name is required")
	}
	if !category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

func priceChanged(prev, next *shared.Money) bool {
	if prev == nil && next == nil {
		return false
	}
	if prev == nil || next == nil {
		return true
	}
	return *prev != *next
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateCode):
		return "item code already exists"
	case errors.Is(err, ErrDuplicateName):
		return "item name already exists"
	case errors.Is(err, ErrUnknownCategory):
		return "unknown category"
	default:
		return err.Error()
	}
}
