// Package snapshot persists the habit collection as a single JSON document
// in a key-value store.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rpggio/habitkit/internal/domain/habit"
	"github.com/rpggio/habitkit/internal/repository"
)

// Key is the KV key holding the habit collection.
const Key = "habits"

// ErrMalformed indicates the stored collection could not be decoded.
var ErrMalformed = errors.New("malformed habit snapshot")

// record is the persisted shape of a habit. Progress is derived but
// stored so readers of the raw document see it.
type record struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Goal           string    `json:"goal"`
	Frequency      string    `json:"frequency"`
	Reminder       *string   `json:"reminder"`
	Streak         int       `json:"streak"`
	CompletedToday bool      `json:"completedToday"`
	Progress       float64   `json:"progress"`
	CompletedDates []string  `json:"completedDates"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toRecord(h habit.Habit) record {
	dates := h.CompletedDates
	if dates == nil {
		dates = []string{}
	}
	return record{
		ID:             h.ID,
		Title:          h.Title,
		Goal:           h.Goal,
		Frequency:      string(h.Frequency),
		Reminder:       h.Reminder,
		Streak:         h.Streak,
		CompletedToday: h.CompletedToday,
		Progress:       h.Progress(),
		CompletedDates: dates,
		CreatedAt:      h.CreatedAt,
	}
}

func (r record) toHabit() habit.Habit {
	freq, ok := habit.ParseFrequency(r.Frequency)
	if !ok {
		freq = habit.FrequencyDaily
	}
	dates := r.CompletedDates
	if dates == nil {
		dates = []string{}
	}
	return habit.Habit{
		ID:             r.ID,
		Title:          r.Title,
		Goal:           r.Goal,
		Frequency:      freq,
		Reminder:       r.Reminder,
		Streak:         r.Streak,
		CompletedToday: r.CompletedToday,
		CompletedDates: dates,
		CreatedAt:      r.CreatedAt,
	}
}

// Repository implements habit.Repository by rewriting the whole
// collection under Key on every change.
type Repository struct {
	kv repository.KVStore

	mu     sync.Mutex
	habits []habit.Habit
}

// NewRepository creates a repository over kv.
func NewRepository(kv repository.KVStore) *Repository {
	return &Repository{kv: kv}
}

// Load reads the collection. A missing key yields an empty collection.
func (r *Repository) Load(ctx context.Context) ([]habit.Habit, error) {
	raw, err := r.kv.Get(ctx, Key)
	if errors.Is(err, repository.ErrNotFound) {
		r.replace(nil)
		return []habit.Habit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading habits: %w", err)
	}

	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// The first record wins on a repeated id, matching the store.
	habits := make([]habit.Habit, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: habit without id", ErrMalformed)
		}
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		habits = append(habits, rec.toHabit())
	}
	r.replace(habits)
	return habits, nil
}

// Add appends h and writes the collection.
func (r *Repository) Add(ctx context.Context, h habit.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(cloneAll(r.habits), h.Clone())
	return r.save(ctx, next)
}

// Update replaces the habit with h.ID, appending it when absent, and
// writes the collection.
func (r *Repository) Update(ctx context.Context, h habit.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneAll(r.habits)
	found := false
	for i := range next {
		if next[i].ID == h.ID {
			next[i] = h.Clone()
			found = true
			break
		}
	}
	if !found {
		next = append(next, h.Clone())
	}
	return r.save(ctx, next)
}

// Remove drops the habit with id and writes the collection.
func (r *Repository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]habit.Habit, 0, len(r.habits))
	for _, h := range r.habits {
		if h.ID != id {
			next = append(next, h.Clone())
		}
	}
	return r.save(ctx, next)
}

// save must be called with r.mu held. The mirror advances even when the
// write fails so the next successful write carries every change.
func (r *Repository) save(ctx context.Context, habits []habit.Habit) error {
	records := make([]record, len(habits))
	for i, h := range habits {
		records[i] = toRecord(h)
	}
	r.habits = habits

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding habits: %w", err)
	}
	if err := r.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("writing habits: %w", err)
	}
	return nil
}

func (r *Repository) replace(habits []habit.Habit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.habits = cloneAll(habits)
}

func cloneAll(habits []habit.Habit) []habit.Habit {
	out := make([]habit.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
	}
	return out
}
