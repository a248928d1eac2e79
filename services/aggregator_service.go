package services

import (
	"context"
	"fmt"
	"time"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
)

// Aggregator turns an owner's raw meal collection into per-day totals.
// Dedup happens here, per read window, rather than as a storage constraint:
// the write path stays non-blocking and client retries are absorbed when
// the numbers are read back.
type Aggregator struct {
	store MealStore
}

func NewAggregator(store MealStore) *Aggregator { return &Aggregator{store: store} }

// DailyTotals is a computed view, never persisted.
type DailyTotals struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein_g"`
	Carbs    int    `json:"carbs_g"`
	Fat      int    `json:"fat_g"`
	Fiber    int    `json:"fiber_g"`
	Sugar    int    `json:"sugar_g"`
	Sodium   int    `json:"sodium_mg"`
}

// Remaining is max(target - consumed, 0) per nutrient, never negative.
type Remaining struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein_g"`
	Carbs    int `json:"carbs_g"`
	Fat      int `json:"fat_g"`
}

const (
	historyMinDays = 1
	historyMaxDays = 60
)

// DedupeMeals collapses records sharing a composite identity; the first
// occurrence in list order wins. Two records are duplicates when they share
// an id, or when they share the derived fingerprint — rapid resubmissions
// of the same confirmed estimate get distinct server ids but identical
// fingerprints, and those must still collapse. Idempotent: deduping a
// deduped set is a no-op.
func DedupeMeals(meals []models.Meal) []models.Meal {
	seenID := make(map[string]struct{}, len(meals))
	seenFP := make(map[string]struct{}, len(meals))
	out := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if m.ID != "" {
			if _, dup := seenID[m.ID]; dup {
				continue
			}
		}
		fp := fingerprint(m)
		if _, dup := seenFP[fp]; dup {
			continue
		}
		if m.ID != "" {
			seenID[m.ID] = struct{}{}
		}
		seenFP[fp] = struct{}{}
		out = append(out, m)
	}
	return out
}

// fingerprint derives identity from timestamp-to-the-second, first item
// name, first item calories and label — what two copies of an accidentally
// resubmitted meal share.
func fingerprint(m models.Meal) string {
	name, cals := "", 0
	if len(m.Items) > 0 {
		name = m.Items[0].Name
		cals = m.Items[0].Calories
	}
	return fmt.Sprintf("%d|%s|%d|%s", m.AteAt.Unix(), name, cals, m.Label)
}

// DayTotals sums every nutrient across the owner's deduplicated meals for
// one calendar date. It also returns the surviving meals, newest first,
// for the day-summary response.
func (a *Aggregator) DayTotals(ctx context.Context, ownerID string, date time.Time) (DailyTotals, []models.Meal, error) {
	meals, err := a.store.List(ctx, ownerID)
	if err != nil {
		return DailyTotals{}, nil, err
	}
	return totalsForDate(meals, date), mealsForDate(meals, date), nil
}

// History computes one DailyTotals per calendar day for a window of days
// ending at the reference date. Each day is deduplicated independently:
// similar meals on different days are legitimate distinct records.
func (a *Aggregator) History(ctx context.Context, ownerID string, days int, ref time.Time) ([]DailyTotals, error) {
	if days < historyMinDays {
		days = historyMinDays
	}
	if days > historyMaxDays {
		days = historyMaxDays
	}
	meals, err := a.store.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]DailyTotals, 0, days)
	for i := days - 1; i >= 0; i-- {
		out = append(out, totalsForDate(meals, ref.AddDate(0, 0, -i)))
	}
	return out, nil
}

// ResetDay drops all of the owner's meals whose date matches the target,
// via filter-and-replace over the full collection, and reports how many
// went away.
func (a *Aggregator) ResetDay(ctx context.Context, ownerID string, date time.Time) (int, error) {
	meals, err := a.store.List(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	keep := make([]models.Meal, 0, len(meals))
	removed := 0
	for _, m := range meals {
		if sameDay(m.AteAt, date) {
			removed++
			continue
		}
		keep = append(keep, m)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := a.store.ReplaceAll(ctx, ownerID, keep); err != nil {
		return 0, err
	}
	return removed, nil
}

// RemainingAgainst clamps target minus consumed at zero for each nutrient.
func RemainingAgainst(totals DailyTotals, goal models.DailyGoal) Remaining {
	floor := func(target, consumed int) int {
		if r := target - consumed; r > 0 {
			return r
		}
		return 0
	}
	return Remaining{
		Calories: floor(goal.Calories, totals.Calories),
		Protein:  floor(goal.Protein, totals.Protein),
		Carbs:    floor(goal.Carbs, totals.Carbs),
		Fat:      floor(goal.Fat, totals.Fat),
	}
}

func totalsForDate(meals []models.Meal, date time.Time) DailyTotals {
	totals := DailyTotals{Date: date.Format("2006-01-02")}
	for _, m := range mealsForDate(meals, date) {
		for _, it := range m.Items {
			totals.Calories += it.Calories
			totals.Protein += it.Protein
			totals.Carbs += it.Carbs
			totals.Fat += it.Fat
			totals.Fiber += it.Fiber
			totals.Sugar += it.Sugar
			totals.Sodium += it.Sodium
		}
	}
	return totals
}

func mealsForDate(meals []models.Meal, date time.Time) []models.Meal {
	day := make([]models.Meal, 0, len(meals))
	for _, m := range meals {
		if sameDay(m.AteAt, date) {
			day = append(day, m)
		}
	}
	return DedupeMeals(day)
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
