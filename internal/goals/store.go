// Package goals persists per-country, per-segment targets of active customers.
package goals

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"RetentionSentinel/internal/model"
)

type key struct {
	country string
	segment model.Segment
}

// Store holds goals keyed by (country, segment) and writes them back to
// disk on every change.
type Store struct {
	mu       sync.Mutex
	goals    map[key]model.Goal
	filePath string

	// Clock stamps UpdatedAt on Set. Nil leaves it zero.
	Clock func() time.Time
}

// NewStore creates a Store, loading existing goals from disk.
func NewStore(filePath string) (*Store, error) {
	loaded, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	s := &Store{goals: make(map[key]model.Goal), filePath: filePath}
	for _, g := range loaded {
		k, err := makeKey(g.Country, g.Segment)
		if err != nil {
			return nil, fmt.Errorf("load goals: %w", err)
		}
		g.Country, g.Segment = k.country, k.segment.String()
		s.goals[k] = g
	}
	return s, nil
}

// Set creates or replaces the target for country and segment. The segment
// may be given by name or by dashboard label.
func (s *Store) Set(country, segment string, target int) (model.Goal, error) {
	if target < 0 {
		return model.Goal{}, fmt.Errorf("target must not be negative, got %d", target)
	}
	k, err := makeKey(country, segment)
	if err != nil {
		return model.Goal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := model.Goal{Country: k.country, Segment: k.segment.String(), Target: target}
	if s.Clock != nil {
		g.UpdatedAt = s.Clock()
	}
	prev, had := s.goals[k]
	s.goals[k] = g
	if err := s.save(); err != nil {
		if had {
			s.goals[k] = prev
		} else {
			delete(s.goals, k)
		}
		return model.Goal{}, fmt.Errorf("save goals: %w", err)
	}
	return g, nil
}

// Delete removes a goal. Deleting a missing goal is not an error.
func (s *Store) Delete(country, segment string) error {
	k, err := makeKey(country, segment)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.goals[k]
	if !had {
		return nil
	}
	delete(s.goals, k)
	if err := s.save(); err != nil {
		s.goals[k] = prev
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// List returns every goal sorted by country, then segment display order.
func (s *Store) List() []model.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted()
}

func (s *Store) sorted() []model.Goal {
	keys := make([]key, 0, len(s.goals))
	for k := range s.goals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].country != keys[j].country {
			return keys[i].country < keys[j].country
		}
		return keys[i].segment < keys[j].segment
	})
	out := make([]model.Goal, len(keys))
	for i, k := range keys {
		out[i] = s.goals[k]
	}
	return out
}

func (s *Store) save() error {
	return SaveState(s.filePath, s.sorted())
}

func makeKey(country, segment string) (key, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return key{}, fmt.Errorf("empty country")
	}
	seg, ok := model.ParseSegment(strings.TrimSpace(segment))
	if !ok {
		return key{}, fmt.Errorf("unknown segment %q", segment)
	}
	return key{country: country, segment: seg}, nil
}
