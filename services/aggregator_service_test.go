package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
)

func mealAt(id string, at time.Time, label, item string, calories int) models.Meal {
	return models.Meal{
		ID:    id,
		AteAt: at,
		Label: label,
		Items: []models.NutritionItem{{
			Name:     item,
			Calories: calories,
			Protein:  10,
			Carbs:    20,
			Fat:      5,
		}},
	}
}

func TestDedupeMealsCollapsesSameID(t *testing.T) {
	at := time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)
	meals := []models.Meal{
		mealAt("m1", at, "lunch", "chicken bowl", 520),
		mealAt("m1", at, "lunch", "chicken bowl", 520),
		mealAt("m2", at.Add(time.Hour), "snack", "apple", 90),
	}
	out := DedupeMeals(meals)
	require.Len(t, out, 2)
	assert.Equal(t, "m1", out[0].ID)
	assert.Equal(t, "m2", out[1].ID)
}

func TestDedupeMealsCollapsesRetriesWithDistinctIDs(t *testing.T) {
	// Two rapid resubmissions of the same confirmed estimate: distinct
	// server ids, identical timestamp-to-the-second, item and label.
	at := time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)
	meals := []models.Meal{
		mealAt("a", at, "lunch", "chicken bowl", 520),
		mealAt("b", at.Add(300*time.Millisecond), "lunch", "chicken bowl", 520),
	}
	out := DedupeMeals(meals)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID, "first occurrence wins")
}

func TestDedupeMealsKeepsDistinctMeals(t *testing.T) {
	at := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	meals := []models.Meal{
		mealAt("a", at, "breakfast", "eggs", 200),
		mealAt("b", at, "breakfast", "toast", 120),
		mealAt("c", at.Add(time.Second), "breakfast", "eggs", 200),
	}
	assert.Len(t, DedupeMeals(meals), 3)
}

func TestDedupeMealsIdempotent(t *testing.T) {
	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	meals := []models.Meal{
		mealAt("a", at, "lunch", "rice", 300),
		mealAt("b", at, "lunch", "rice", 300),
		mealAt("c", at, "dinner", "soup", 150),
	}
	once := DedupeMeals(meals)
	twice := DedupeMeals(once)
	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(meals))
}

func seededAggregator(t *testing.T, owner string, meals ...models.Meal) *Aggregator {
	t.Helper()
	store := NewMemoryMealStore()
	for _, m := range meals {
		_, err := store.Append(context.Background(), owner, m)
		require.NoError(t, err)
	}
	return NewAggregator(store)
}

func TestDayTotalsSumsOneDateOnly(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	agg := seededAggregator(t, "owner-1",
		mealAt("a", day.Add(8*time.Hour), "breakfast", "eggs", 200),
		mealAt("b", day.Add(13*time.Hour), "lunch", "chicken bowl", 520),
		mealAt("c", day.AddDate(0, 0, -1).Add(12*time.Hour), "lunch", "pasta", 700),
	)

	totals, recent, err := agg.DayTotals(context.Background(), "owner-1", day)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-20", totals.Date)
	assert.Equal(t, 720, totals.Calories)
	assert.Equal(t, 20, totals.Protein)
	assert.Len(t, recent, 2)
	assert.Equal(t, "lunch", recent[0].Label, "newest first")
}

func TestDayTotalsAbsorbsDuplicateAppends(t *testing.T) {
	at := time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)
	agg := seededAggregator(t, "owner-1",
		mealAt("a", at, "lunch", "chicken bowl", 520),
		mealAt("b", at, "lunch", "chicken bowl", 520),
	)

	totals, recent, err := agg.DayTotals(context.Background(), "owner-1", at)
	require.NoError(t, err)
	assert.Equal(t, 520, totals.Calories, "duplicate counted once")
	assert.Len(t, recent, 1)
}

func TestHistoryWindowOldestFirst(t *testing.T) {
	ref := time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)
	agg := seededAggregator(t, "owner-1",
		mealAt("a", ref, "dinner", "soup", 150),
		mealAt("b", ref.AddDate(0, 0, -1), "dinner", "pasta", 700),
		mealAt("c", ref.AddDate(0, 0, -5), "dinner", "pizza", 900),
	)

	history, err := agg.History(context.Background(), "owner-1", 3, ref)
	require.NoError(t, err)
	require.Len(t, history, 3, "exactly one entry per requested day")
	assert.Equal(t, "2026-08-18", history[0].Date)
	assert.Equal(t, 0, history[0].Calories, "empty day still present")
	assert.Equal(t, "2026-08-19", history[1].Date)
	assert.Equal(t, 700, history[1].Calories)
	assert.Equal(t, "2026-08-20", history[2].Date)
	assert.Equal(t, 150, history[2].Calories)
}

func TestHistoryClampsDays(t *testing.T) {
	ref := time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC)
	agg := seededAggregator(t, "owner-1")

	history, err := agg.History(context.Background(), "owner-1", 0, ref)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	history, err = agg.History(context.Background(), "owner-1", 500, ref)
	require.NoError(t, err)
	assert.Len(t, history, 60)
}

func TestResetDayRemovesOnlyThatDate(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	store := NewMemoryMealStore()
	agg := NewAggregator(store)
	for _, m := range []models.Meal{
		mealAt("a", day.Add(8*time.Hour), "breakfast", "eggs", 200),
		mealAt("b", day.Add(13*time.Hour), "lunch", "chicken bowl", 520),
		mealAt("c", day.AddDate(0, 0, -1).Add(12*time.Hour), "lunch", "pasta", 700),
	} {
		_, err := store.Append(context.Background(), "owner-1", m)
		require.NoError(t, err)
	}

	removed, err := agg.ResetDay(context.Background(), "owner-1", day)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := store.List(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "pasta", left[0].Items[0].Name)

	removed, err = agg.ResetDay(context.Background(), "owner-1", day)
	require.NoError(t, err)
	assert.Equal(t, 0, removed, "resetting an empty day is a no-op")
}

func TestRemainingAgainstNeverNegative(t *testing.T) {
	totals := DailyTotals{Calories: 2500, Protein: 80, Carbs: 100, Fat: 40}
	goal := models.DailyGoal{Calories: 2000, Protein: 150, Carbs: 250, Fat: 70}

	rem := RemainingAgainst(totals, goal)
	assert.Equal(t, 0, rem.Calories, "overshoot clamps to zero")
	assert.Equal(t, 70, rem.Protein)
	assert.Equal(t, 150, rem.Carbs)
	assert.Equal(t, 30, rem.Fat)
}
