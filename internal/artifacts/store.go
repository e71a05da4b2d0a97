// Package artifacts holds rendered outputs for callers that cannot take
// large payloads inline. References are ephemeral: entries live in memory
// with a TTL and a periodic sweep, never on disk.
package artifacts

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/rendis/seamark/pkg/schema"
)

// DefaultTTL is how long a stored artifact stays fetchable.
const DefaultTTL = 15 * time.Minute

// Artifact is one rendered output addressable by reference.
type Artifact struct {
	ID        string
	Format    schema.OutputFormat
	Data      []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is an in-memory TTL store for rendered outputs.
type Store struct {
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]*Artifact

	cron *cron.Cron
}

// NewStore creates a Store. A non-positive ttl uses DefaultTTL.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*Artifact),
	}
}

// Put stores a rendered output and returns its reference ID.
func (s *Store) Put(format schema.OutputFormat, data []byte) string {
	now := s.now()
	art := &Artifact{
		ID:        uuid.New().String(),
		Format:    format,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.entries[art.ID] = art
	s.mu.Unlock()

	return art.ID
}

// Get fetches an artifact by reference. Expired or unknown references
// return NOT_FOUND.
func (s *Store) Get(id string) (*Artifact, error) {
	s.mu.RLock()
	art, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || s.now().After(art.ExpiresAt) {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "no rendered output for reference %q", id)
	}
	return art, nil
}

// Sweep drops every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, art := range s.entries {
		if now.After(art.ExpiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, expired ones included until the
// next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweeper begins the periodic expiry sweep. Call Stop to halt it.
func (s *Store) StartSweeper() {
	if s.cron != nil {
		return
	}
	s.cron = cron.New()
	_, _ = s.cron.AddFunc("@every 1m", func() {
		if n := s.Sweep(); n > 0 {
			s.logger.Debug("swept expired artifacts", slog.Int("removed", n))
		}
	})
	s.cron.Start()
}

// Stop halts the sweeper. The store itself stays usable.
func (s *Store) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
