package services

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
)

// GoalStore holds per-owner daily nutrition targets. The goal-setting
// surface writes them; the day summary reads them to compute remaining.
type GoalStore interface {
	Get(ctx context.Context, ownerID string) (models.DailyGoal, error)
	Upsert(ctx context.Context, ownerID string, goal models.DailyGoal) (models.DailyGoal, error)
}

type GormGoalStore struct {
	db *gorm.DB
}

func NewGormGoalStore(db *gorm.DB) *GormGoalStore { return &GormGoalStore{db: db} }

// Get returns the zero goal when the owner never set targets; remaining
// against a zero target is simply zero.
func (s *GormGoalStore) Get(ctx context.Context, ownerID string) (models.DailyGoal, error) {
	if ownerID == "" {
		return models.DailyGoal{}, ErrMissingOwner
	}
	var goal models.DailyGoal
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DailyGoal{OwnerID: ownerID}, nil
		}
		return models.DailyGoal{}, err
	}
	return goal, nil
}

func (s *GormGoalStore) Upsert(ctx context.Context, ownerID string, goal models.DailyGoal) (models.DailyGoal, error) {
	if ownerID == "" {
		return models.DailyGoal{}, ErrMissingOwner
	}
	var existing models.DailyGoal
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal.ID = 0
		goal.OwnerID = ownerID
		if err := s.db.WithContext(ctx).Create(&goal).Error; err != nil {
			return models.DailyGoal{}, err
		}
		return goal, nil
	}
	if err != nil {
		return models.DailyGoal{}, err
	}
	existing.Calories = goal.Calories
	existing.Protein = goal.Protein
	existing.Carbs = goal.Carbs
	existing.Fat = goal.Fat
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return models.DailyGoal{}, err
	}
	return existing, nil
}

// MemoryGoalStore backs tests and no-database deployments.
type MemoryGoalStore struct {
	mu    sync.RWMutex
	goals map[string]models.DailyGoal
}

func NewMemoryGoalStore() *MemoryGoalStore {
	return &MemoryGoalStore{goals: map[string]models.DailyGoal{}}
}

func (s *MemoryGoalStore) Get(_ context.Context, ownerID string) (models.DailyGoal, error) {
	if ownerID == "" {
		return models.DailyGoal{}, ErrMissingOwner
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.goals[ownerID]; ok {
		return g, nil
	}
	return models.DailyGoal{OwnerID: ownerID}, nil
}

func (s *MemoryGoalStore) Upsert(_ context.Context, ownerID string, goal models.DailyGoal) (models.DailyGoal, error) {
	if ownerID == "" {
		return models.DailyGoal{}, ErrMissingOwner
	}
	goal.OwnerID = ownerID
	s.mu.Lock()
	s.goals[ownerID] = goal
	s.mu.Unlock()
	return goal, nil
}
