package snapshot_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/repository"
	"github.com/rpggio/habitkit/internal/repository/mocks"
	"github.com/rpggio/habitkit/internal/snapshot"
	"github.com/rpggio/habitkit/internal/sqlite"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newKV(t *testing.T) *sqlite.KVStore {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return sqlite.NewKVStore(db)
}

func sample(id string) habit.Habit {
	r := "07:00"
	return habit.Habit{
		ID:             id,
		Title:          "Read",
		Goal:           "20 pages",
		Frequency:      habit.FrequencyWeekly,
		Reminder:       &r,
		Streak:         2,
		CompletedToday: true,
		CompletedDates: []string{"2024-03-09", "2024-03-10"},
		CreatedAt:      time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestRepository_LoadMissingKey(t *testing.T) {
	repo := snapshot.NewRepository(newKV(t))

	habits, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, habits)
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	repo := snapshot.NewRepository(kv)

	require.NoError(t, repo.Add(ctx, sample("1")))
	require.NoError(t, repo.Add(ctx, sample("2")))

	updated := sample("1")
	updated.CompletedToday = false
	updated.Streak = 1
	updated.CompletedDates = []string{"2024-03-09"}
	require.NoError(t, repo.Update(ctx, updated))
	require.NoError(t, repo.Remove(ctx, "2"))

	habits, err := snapshot.NewRepository(kv).Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []habit.Habit{updated}, habits)
}

func TestRepository_DocumentShape(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	repo := snapshot.NewRepository(kv)
	require.NoError(t, repo.Add(ctx, sample("1")))

	raw, err := kv.Get(ctx, snapshot.Key)
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	require.Len(t, doc, 1)
	require.Equal(t, "1", doc[0]["id"])
	require.Equal(t, "Weekly", doc[0]["frequency"])
	require.Equal(t, "07:00", doc[0]["reminder"])
	require.Equal(t, float64(1), doc[0]["progress"])
	require.Equal(t, true, doc[0]["completedToday"])
	require.Len(t, doc[0]["completedDates"], 2)
}

func TestRepository_NullReminder(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	repo := snapshot.NewRepository(kv)

	h := sample("1")
	h.Reminder = nil
	h.CompletedToday = false
	require.NoError(t, repo.Add(ctx, h))

	raw, err := kv.Get(ctx, snapshot.Key)
	require.NoError(t, err)
	require.Contains(t, raw, `"reminder":null`)
	require.Contains(t, raw, `"progress":0`)
}

func TestRepository_LoadMalformed(t *testing.T) {
	ctx := context.Background()

	for name, raw := range map[string]string{
		"not json":   "{{{",
		"wrong type": `{"id":"1"}`,
		"missing id": `[{"title":"Read"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t)
			require.NoError(t, kv.Set(ctx, snapshot.Key, raw))

			_, err := snapshot.NewRepository(kv).Load(ctx)
			require.ErrorIs(t, err, snapshot.ErrMalformed)
		})
	}
}

func TestRepository_LoadNormalizesFrequency(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	require.NoError(t, kv.Set(ctx, snapshot.Key, `[{"id":"1","title":"Read","goal":"g","frequency":"monthly"},{"id":"2","title":"Run","goal":"g","frequency":"sometimes"}]`))

	habits, err := snapshot.NewRepository(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	require.Equal(t, habit.FrequencyMonthly, habits[0].Frequency)
	require.Equal(t, habit.FrequencyDaily, habits[1].Frequency)
	require.NotNil(t, habits[0].CompletedDates)
}

func TestRepository_LoadThenAppend(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	require.NoError(t, snapshot.NewRepository(kv).Add(ctx, sample("1")))

	repo := snapshot.NewRepository(kv)
	_, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, sample("2")))

	habits, err := snapshot.NewRepository(kv).Load(ctx)
	require.NoError(t, err)
	require.Len(t, habits, 2)
}

func TestRepository_WriteFailureCarriedForward(t *testing.T) {
	ctx := context.Background()
	kv := &mocks.KVStore{}
	kv.On("Set", ctx, snapshot.Key, mock.Anything).Return(errors.New("disk full")).Once()
	kv.On("Set", ctx, snapshot.Key, mock.MatchedBy(func(raw string) bool {
		var doc []map[string]any
		return json.Unmarshal([]byte(raw), &doc) == nil && len(doc) == 2
	})).Return(nil).Once()

	repo := snapshot.NewRepository(kv)
	require.ErrorContains(t, repo.Add(ctx, sample("1")), "disk full")
	require.NoError(t, repo.Add(ctx, sample("2")))

	kv.AssertExpectations(t)
}

func TestRepository_ReadError(t *testing.T) {
	ctx := context.Background()
	kv := &mocks.KVStore{}
	kv.On("Get", ctx, snapshot.Key).Return("", errors.New("connection refused"))

	_, err := snapshot.NewRepository(kv).Load(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, snapshot.ErrMalformed)
	require.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestRepository_LoadDropsRepeatedIDs(t *testing.T) {
	ctx := context.Background()
	kv := newKV(t)
	require.NoError(t, kv.Set(ctx, snapshot.Key, `[
		{"id":"1","title":"Read","goal":"g","frequency":"Daily","streak":0,"completedToday":false,"completedDates":[]},
		{"id":"1","title":"Copy","goal":"g","frequency":"Daily","streak":0,"completedToday":false,"completedDates":[]},
		{"id":"2","title":"Run","goal":"g","frequency":"Daily","streak":0,"completedToday":false,"completedDates":[]}
	]`))

	repo := snapshot.NewRepository(kv)
	habits, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, habits, 2)
	require.Equal(t, "Read", habits[0].Title)

	updated := habits[0]
	updated.Title = "Read more"
	require.NoError(t, repo.Update(ctx, updated))

	raw, err := kv.Get(ctx, snapshot.Key)
	require.NoError(t, err)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Len(t, stored, 2)
	require.Equal(t, "1", stored[0]["id"])
	require.Equal(t, "Read more", stored[0]["title"])
	require.Equal(t, "2", stored[1]["id"])
}
