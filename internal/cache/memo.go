package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/Simplici0/carcost/internal/maintenance"
	"github.com/Simplici0/carcost/internal/tco"
)

const keyPrefix = "carcost:breakdown:"

// Memo caches tco.ComputeCostBreakdown results keyed by a digest of their inputs.
type Memo struct {
	repo   Repository
	log    *zap.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// NewMemo wraps repo. A nil logger discards output.
func NewMemo(repo Repository, log *zap.Logger) *Memo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Memo{repo: repo, log: log}
}

// Breakdown returns the cached breakdown for the inputs, computing and storing it on a
// miss. Only the tables of the vehicle's make/model take part in the key.
func (m *Memo) Breakdown(ctx context.Context, settings tco.Settings, vehicle tco.Vehicle, db maintenance.Database) tco.Breakdown {
	key, ok := Key(settings, vehicle, db)
	if !ok {
		m.misses.Add(1)
		return tco.ComputeCostBreakdown(settings, vehicle, db)
	}

	if raw, found := m.repo.Get(ctx, key); found {
		var b tco.Breakdown
		if err := json.Unmarshal([]byte(raw), &b); err == nil {
			m.hits.Add(1)
			return b
		}
		m.log.Warn("discarding undecodable cached breakdown", zap.String("key", key))
	}

	m.misses.Add(1)
	b := tco.ComputeCostBreakdown(settings, vehicle, db)
	if data, err := json.Marshal(b); err == nil {
		if err := m.repo.Set(ctx, key, string(data)); err != nil {
			m.log.Warn("cache breakdown", zap.String("key", key), zap.Error(err))
		}
	}
	return b
}

// Stats returns hit and miss counts since creation.
func (m *Memo) Stats() Stats {
	return Stats{Hits: m.hits.Load(), Misses: m.misses.Load()}
}

type keyInput struct {
	Settings tco.Settings        `json:"settings"`
	Vehicle  tco.Vehicle         `json:"vehicle"`
	Tables   []maintenance.Table `json:"tables"`
}

// Key digests the inputs of one calculation. It reports false when the inputs cannot be
// encoded, e.g. when they contain NaN.
func Key(settings tco.Settings, vehicle tco.Vehicle, db maintenance.Database) (string, bool) {
	data, err := json.Marshal(keyInput{
		Settings: settings,
		Vehicle:  vehicle,
		Tables:   db.Lookup(vehicle.Make, vehicle.Model),
	})
	if err != nil {
		return "", false
	}
	return keyPrefix + strconv.FormatUint(xxhash.Sum64(data), 16), true
}
