package sessionstate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avorobev/fableroom/internal/model"
)

// DefaultReconcileInterval is how often the backstop pull runs
const DefaultReconcileInterval = 5 * time.Second

// RoomFetcher pulls the authoritative room snapshot
type RoomFetcher interface {
	GetRoomInfo(ctx context.Context, code model.RoomCode) (*model.Room, error)
}

// Store holds the latest known room snapshot and live game state.
//
// Pulls are tagged with a monotonically increasing sequence number at
// request time; a response is applied only if no response for a later
// request has been applied already. Response arrival order is irrelevant:
// a stale snapshot can never overwrite a fresher one.
type Store struct {
	fetcher RoomFetcher
	logger  *slog.Logger

	mu      sync.RWMutex
	room    *model.Room
	game    *model.GameState
	nextSeq uint64
	applied uint64
}

// New creates an empty store
func New(fetcher RoomFetcher, logger *slog.Logger) *Store {
	return &Store{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Room returns the last applied room snapshot, or nil
func (s *Store) Room() *model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

// Game returns the last pushed game state, or nil
func (s *Store) Game() *model.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

// ApplyGameState replaces the game state wholesale (push path)
func (s *Store) ApplyGameState(gs model.GameState) {
	s.mu.Lock()
	s.game = &gs
	s.mu.Unlock()
}

// BeginPull reserves a sequence number for an outgoing pull
func (s *Store) BeginPull() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// CompletePull applies a pull response. It reports whether the snapshot
// was applied; responses for superseded requests are discarded.
func (s *Store) CompletePull(seq uint64, room *model.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		s.logger.Debug("discarding stale pull response",
			slog.Uint64("seq", seq),
			slog.Uint64("applied", s.applied),
		)
		return false
	}
	s.applied = seq
	s.room = room
	return true
}

// Refresh issues one sequence-tagged pull and applies its response
func (s *Store) Refresh(ctx context.Context, code model.RoomCode) error {
	seq := s.BeginPull()
	room, err := s.fetcher.GetRoomInfo(ctx, code)
	if err != nil {
		return err
	}
	s.CompletePull(seq, room)
	return nil
}

// Reset clears both snapshots and invalidates every in-flight pull,
// so a response arriving after teardown is never applied to a newer
// connection's state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = nil
	s.game = nil
	s.applied = s.nextSeq
}
