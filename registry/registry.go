// Package registry is the in-memory store of trained models and their scores. Models stay
// registered until evicted by age with Cleanup.
package registry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-ensemble-forecaster/models"
	"github.com/aouyang1/go-ensemble-forecaster/util"
)

var (
	ErrModelNotFound  = errors.New("model not found")
	ErrDuplicateModel = errors.New("model id already registered")
	ErrNilModel       = errors.New("nil model")
)

// Summary describes a registered model and its fitted parameters
type Summary struct {
	ID          string             `json:"id"`
	Type        models.ModelType   `json:"type"`
	Score       float64            `json:"score"`
	Performance models.Performance `json:"performance"`
	Params      map[string]float64 `json:"params,omitempty"`
	TrainedAt   time.Time          `json:"trained_at"`
}

type entry struct {
	model models.Model
	score float64
}

// Registry maps model ids to trained models and their scores. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowFunc func() time.Time
}

// New returns an empty registry. A nil nowFunc uses the wall clock.
func New(nowFunc func() time.Time) *Registry {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &Registry{
		entries: make(map[string]entry),
		nowFunc: nowFunc,
	}
}

// Register stores the model under its id with the given score
func (r *Registry) Register(m models.Model, score float64) error {
	if m == nil {
		return ErrNilModel
	}
	id := m.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("id %s, %w", id, ErrDuplicateModel)
	}
	r.entries[id] = entry{model: m, score: score}
	return nil
}

// Get returns the model registered under id
func (r *Registry) Get(id string) (models.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[id]
	if !exists {
		return nil, fmt.Errorf("id %s, %w", id, ErrModelNotFound)
	}
	return e.model, nil
}

// Score returns the score the model was registered with
func (r *Registry) Score(id string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[id]
	if !exists {
		return math.NaN(), fmt.Errorf("id %s, %w", id, ErrModelNotFound)
	}
	return e.score, nil
}

// Len returns the number of registered models
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// List returns a summary of every registered model ordered by score, best first. Equal
// scores are ordered by id.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	summaries := make([]Summary, 0, len(r.entries))
	for id, e := range r.entries {
		summaries = append(summaries, Summary{
			ID:          id,
			Type:        e.model.Type(),
			Score:       e.score,
			Performance: e.model.Performance(),
			Params:      e.model.Params(),
			TrainedAt:   e.model.TrainedAt(),
		})
	}
	r.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Score != summaries[j].Score {
			return summaries[i].Score > summaries[j].Score
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// Cleanup evicts every model trained at or before now - maxAge and returns the number of
// evicted models. Cleanup(0) evicts everything trained up to now.
func (r *Registry) Cleanup(maxAge time.Duration) int {
	cutoff := r.nowFunc().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted int
	for id, e := range r.entries {
		if e.model.TrainedAt().After(cutoff) {
			continue
		}
		delete(r.entries, id)
		evicted++
	}
	if evicted > 0 {
		slog.Debug("evicted models from registry", "evicted", evicted, "remaining", len(r.entries), "max_age", maxAge.String())
	}
	return evicted
}

// TablePrint writes the registered models as an aligned table
func TablePrint(w io.Writer, summaries []Summary, prefix, indent string, indentGrowth int) error {
	noModels := " None"
	if len(summaries) > 0 {
		noModels = ""
	}
	fmt.Fprintf(w, "%s%sModels:%s\n", prefix, util.IndentExpand(indent, indentGrowth), noModels)
	if len(summaries) == 0 {
		return nil
	}

	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "%s%sID\tType\tScore\tMSE\tR2\tTrained At\t\n", prefix, util.IndentExpand(indent, indentGrowth+1))
	for _, s := range summaries {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t%.3f\t%.3f\t%.3f\t%s\t\n",
			prefix, util.IndentExpand(indent, indentGrowth+1),
			s.ID, s.Type, s.Score, s.Performance.MSE, s.Performance.R2,
			s.TrainedAt.UTC().Format(time.RFC3339),
		)
	}
	return tbl.Flush()
}
