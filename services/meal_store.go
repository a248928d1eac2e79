package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
)

// MealStore is the injected per-owner storage abstraction. Records are
// append-only; updates are not supported, correction is Remove + Append.
// List never deduplicates — what counts as a duplicate depends on the time
// window being read, so dedup belongs to the aggregator.
type MealStore interface {
	Append(ctx context.Context, ownerID string, meal models.Meal) (*models.Meal, error)
	List(ctx context.Context, ownerID string) ([]models.Meal, error)
	// Remove is idempotent: an unknown id reports false, not an error.
	Remove(ctx context.Context, ownerID, id string) (bool, error)
	// ReplaceAll swaps an owner's whole collection, used by day reset.
	ReplaceAll(ctx context.Context, ownerID string, meals []models.Meal) error
}

// prepareMeal fills server-side fields the caller omitted and enforces the
// append invariants shared by every implementation.
func prepareMeal(ownerID string, meal *models.Meal) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	meal.Sanitize()
	if len(meal.Items) == 0 {
		return ErrInvalidInput
	}
	meal.OwnerID = ownerID
	if meal.ID == "" {
		meal.ID = uuid.NewString()
	}
	if meal.AteAt.IsZero() {
		meal.AteAt = time.Now()
	}
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now()
	}
	return nil
}

// ---------- gorm-backed store ----------

type GormMealStore struct {
	db *gorm.DB
}

func NewGormMealStore(db *gorm.DB) *GormMealStore { return &GormMealStore{db: db} }

func (s *GormMealStore) Append(ctx context.Context, ownerID string, meal models.Meal) (*models.Meal, error) {
	if err := prepareMeal(ownerID, &meal); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (s *GormMealStore) List(ctx context.Context, ownerID string) ([]models.Meal, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	var meals []models.Meal
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("ate_at DESC, created_at DESC").
		Find(&meals).Error
	return meals, err
}

func (s *GormMealStore) Remove(ctx context.Context, ownerID, id string) (bool, error) {
	if ownerID == "" {
		return false, ErrMissingOwner
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Meal{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	// Items carry no owner column, so clear them by meal id.
	if err := s.db.WithContext(ctx).Where("meal_id = ?", id).Delete(&models.NutritionItem{}).Error; err != nil {
		return true, err
	}
	return true, nil
}

func (s *GormMealStore) ReplaceAll(ctx context.Context, ownerID string, meals []models.Meal) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Meal{}).Where("owner_id = ?", ownerID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("meal_id IN ?", ids).Delete(&models.NutritionItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("owner_id = ?", ownerID).Delete(&models.Meal{}).Error; err != nil {
				return err
			}
		}
		for i := range meals {
			meals[i].OwnerID = ownerID
			if err := tx.Create(&meals[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ---------- in-memory store ----------

// MemoryMealStore keeps each owner's collection in a map guarded by one
// RWMutex. The lock is held only for the slice copy, so appends stay
// non-blocking in practice; racing appends may duplicate a record, which
// the aggregator's dedup absorbs at read time.
type MemoryMealStore struct {
	mu    sync.RWMutex
	meals map[string][]models.Meal
}

func NewMemoryMealStore() *MemoryMealStore {
	return &MemoryMealStore{meals: map[string][]models.Meal{}}
}

func (s *MemoryMealStore) Append(_ context.Context, ownerID string, meal models.Meal) (*models.Meal, error) {
	if err := prepareMeal(ownerID, &meal); err != nil {
		return nil, err
	}
	stored := cloneMeal(meal)
	s.mu.Lock()
	s.meals[ownerID] = append(s.meals[ownerID], stored)
	s.mu.Unlock()
	return &meal, nil
}

func (s *MemoryMealStore) List(_ context.Context, ownerID string) ([]models.Meal, error) {
	if ownerID == "" {
		return nil, ErrMissingOwner
	}
	s.mu.RLock()
	src := s.meals[ownerID]
	out := make([]models.Meal, len(src))
	for i, m := range src {
		out[i] = cloneMeal(m)
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AteAt.Equal(out[j].AteAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].AteAt.After(out[j].AteAt)
	})
	return out, nil
}

func (s *MemoryMealStore) Remove(_ context.Context, ownerID, id string) (bool, error) {
	if ownerID == "" {
		return false, ErrMissingOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.meals[ownerID]
	for i, m := range src {
		if m.ID == id {
			s.meals[ownerID] = append(src[:i:i], src[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryMealStore) ReplaceAll(_ context.Context, ownerID string, meals []models.Meal) error {
	if ownerID == "" {
		return ErrMissingOwner
	}
	replacement := make([]models.Meal, len(meals))
	for i, m := range meals {
		m.OwnerID = ownerID
		replacement[i] = cloneMeal(m)
	}
	s.mu.Lock()
	s.meals[ownerID] = replacement
	s.mu.Unlock()
	return nil
}

func cloneMeal(m models.Meal) models.Meal {
	out := m
	out.Items = append([]models.NutritionItem(nil), m.Items...)
	out.IdentifiedFoods = append([]string(nil), m.IdentifiedFoods...)
	out.SuggestedSwaps = append([]string(nil), m.SuggestedSwaps...)
	return out
}
