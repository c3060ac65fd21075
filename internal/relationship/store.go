package relationship

import (
	"context"
	"errors"

	"questlog/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store owns the relationship state between every user pair. Every mutation
// runs as a transaction that locks the pair's canonical edge row, checks the
// precondition for the requested transition and writes the new state, so a
// concurrent action from the other side of the pair either sees the state
// before the commit or the state after it, never anything in between.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on top of the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// State is the resolved relationship state for a pair, identical no matter
// which party asks.
type State struct {
	State models.EdgeState
	// Actor is the requester while pending, the blocker while blocked, zero otherwise.
	Actor uint
}

// StateNone is the implicit state of a pair with no stored edge.
var StateNone = State{State: ""}

// IsNone reports whether no relationship exists for the pair.
func (s State) IsNone() bool { return s.State == "" }

// pairKey returns the canonical (low, high) ordering for a pair. The
// canonical key doubles as the global lock order for pair transactions.
func pairKey(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// lockEdge loads the pair's edge inside tx, taking a row lock on engines
// that support it. Returns nil when the pair has no edge.
func lockEdge(tx *gorm.DB, low, high uint) (*models.RelationshipEdge, error) {
	q := tx
	// sqlite (used in tests) has no FOR UPDATE; its writer lock covers us there.
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var edge models.RelationshipEdge
	err := q.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// SendRequest creates a pending friend request from self to other. If the
// other party already has a request in flight toward self, the two pendings
// collapse straight to friends: mutual consent has been expressed.
func (s *Store) SendRequest(ctx context.Context, self, other uint) error {
	if self == other {
		return ErrSelfReference
	}
	low, high := pairKey(self, other)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := lockEdge(tx, low, high)
		if err != nil {
			return err
		}
		switch {
		case edge == nil:
			return tx.Create(&models.RelationshipEdge{
				UserLowID:  low,
				UserHighID: high,
				State:      models.EdgeStatePending,
				ActorID:    self,
			}).Error
		case edge.State == models.EdgeStatePending && edge.ActorID == other:
			// Mirror request already in flight; both sides have now consented.
			return tx.Model(edge).Updates(map[string]interface{}{
				"state":    models.EdgeStateFriends,
				"actor_id": 0,
			}).Error
		default:
			// Duplicate request, already friends, or blocked.
			return ErrInvalidTransition
		}
	})
}

// AcceptRequest accepts a pending request sent by other. The caller must be
// the recipient; a requester cannot accept their own request.
func (s *Store) AcceptRequest(ctx context.Context, self, other uint) error {
	if self == other {
		return ErrSelfReference
	}
	low, high := pairKey(self, other)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := lockEdge(tx, low, high)
		if err != nil {
			return err
		}
		if edge == nil || edge.State != models.EdgeStatePending || edge.ActorID != other {
			return ErrInvalidTransition
		}
		return tx.Model(edge).Updates(map[string]interface{}{
			"state":    models.EdgeStateFriends,
			"actor_id": 0,
		}).Error
	})
}

// DeclineRequest declines a pending request sent by other, returning the
// pair to none. Same precondition as AcceptRequest.
func (s *Store) DeclineRequest(ctx context.Context, self, other uint) error {
	return s.deletePending(ctx, self, other, other)
}

// CancelRequest withdraws a pending request the caller sent. The sender-side
// mirror of DeclineRequest; both land the pair on none.
func (s *Store) CancelRequest(ctx context.Context, self, other uint) error {
	return s.deletePending(ctx, self, other, self)
}

func (s *Store) deletePending(ctx context.Context, self, other, requester uint) error {
	if self == other {
		return ErrSelfReference
	}
	low, high := pairKey(self, other)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := lockEdge(tx, low, high)
		if err != nil {
			return err
		}
		if edge == nil || edge.State != models.EdgeStatePending || edge.ActorID != requester {
			return ErrInvalidTransition
		}
		return tx.Delete(&models.RelationshipEdge{UserLowID: low, UserHighID: high}).Error
	})
}

// RemoveFriend dissolves an established friendship. Removing a non-friend is
// an ErrInvalidTransition rather than a silent no-op, so the caller's UI
// learns the relationship had already changed.
func (s *Store) RemoveFriend(ctx context.Context, self, other uint) error {
	if self == other {
		return ErrSelfReference
	}
	low, high := pairKey(self, other)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := lockEdge(tx, low, high)
		if err != nil {
			return err
		}
		if edge == nil || edge.State != models.EdgeStateFriends {
			return ErrInvalidTransition
		}
		return tx.Delete(&models.RelationshipEdge{UserLowID: low, UserHighID: high}).Error
	})
}

// BlockUser moves the pair to blocked with self as blocker, from any prior
// state. Any pending request or friendship is discarded. Re-blocking by the
// same blocker is a no-op success.
func (s *Store) BlockUser(ctx context.Context, self, other uint) error {
	if self == other {
		return ErrSelfReference
	}
	low, high := pairKey(self, other)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := lockEdge(tx, low, high)
		if err != nil {
			return err
		}
		switch {
		case edge == nil:
			return tx.Create(&models.RelationshipEdge{
				UserLowID:  low,
				UserHighID: high,
				State:      models.EdgeStateBlocked,
				ActorID:    self,
			}).Error
		case edge.State == models.EdgeStateBlocked && edge.ActorID == self:
			return nil
		default:
			return tx.Model(edge).Updates(map[string]interface{}{
				"state":    models.EdgeStateBlocked,
				"actor_id": self,
			}).Error
		}
	})
}

// UnblockUser lifts a block the caller imposed, returning the pair to none
// (never to the state that held before the block). Only the blocker may
// unblock; the blocked party gets ErrForbidden.
func (s *Store) UnblockUser(ctx context.Context, self, other uint) error {
	if self == other {
		return ErrSelfReference
	}
	low, high := pairKey(self, other)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge, err := lockEdge(tx, low, high)
		if err != nil {
			return err
		}
		if edge == nil || edge.State != models.EdgeStateBlocked {
			return ErrInvalidTransition
		}
		if edge.ActorID != self {
			return ErrForbidden
		}
		return tx.Delete(&models.RelationshipEdge{UserLowID: low, UserHighID: high}).Error
	})
}

// Resolve returns the pair's current state. Because both parties resolve the
// same canonical row, Resolve(a, b) and Resolve(b, a) always agree.
func (s *Store) Resolve(ctx context.Context, self, other uint) (State, error) {
	if self == other {
		return StateNone, ErrSelfReference
	}
	low, high := pairKey(self, other)

	var edge models.RelationshipEdge
	err := s.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StateNone, nil
	}
	if err != nil {
		return StateNone, err
	}
	return State{State: edge.State, Actor: edge.ActorID}, nil
}

// ListFriends returns the users self is friends with, ordered by ID.
func (s *Store) ListFriends(ctx context.Context, self uint) ([]models.User, error) {
	return s.listCounterparts(ctx, self,
		"state = ? AND (user_low_id = ? OR user_high_id = ?)",
		models.EdgeStateFriends, self, self)
}

// ListPending returns the users whose friend requests await self's answer.
func (s *Store) ListPending(ctx context.Context, self uint) ([]models.User, error) {
	return s.listCounterparts(ctx, self,
		"state = ? AND actor_id <> ? AND (user_low_id = ? OR user_high_id = ?)",
		models.EdgeStatePending, self, self, self)
}

// ListSent returns the users self has sent still-pending requests to.
func (s *Store) ListSent(ctx context.Context, self uint) ([]models.User, error) {
	return s.listCounterparts(ctx, self,
		"state = ? AND actor_id = ? AND (user_low_id = ? OR user_high_id = ?)",
		models.EdgeStatePending, self, self, self)
}

// ListBlocked returns the users self has blocked. Pairs where self is the
// blocked party are not included.
func (s *Store) ListBlocked(ctx context.Context, self uint) ([]models.User, error) {
	return s.listCounterparts(ctx, self,
		"state = ? AND actor_id = ? AND (user_low_id = ? OR user_high_id = ?)",
		models.EdgeStateBlocked, self, self, self)
}

func (s *Store) listCounterparts(ctx context.Context, self uint, cond string, args ...interface{}) ([]models.User, error) {
	var edges []models.RelationshipEdge
	if err := s.db.WithContext(ctx).Where(cond, args...).Find(&edges).Error; err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return []models.User{}, nil
	}

	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.Other(self))
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Candidate classification for search results.
const (
	ClassFriend  = "friend"
	ClassPending = "pending" // incoming request awaiting self's answer
	ClassSent    = "sent"    // outgoing request self has not had answered
	ClassNone    = "none"
)

// ClassifyCandidates maps each candidate ID to its relationship class from
// self's perspective. Blocked pairs classify as none; the search layer hides
// them entirely.
func (s *Store) ClassifyCandidates(ctx context.Context, self uint, ids []uint) (map[uint]string, error) {
	classes := make(map[uint]string, len(ids))
	for _, id := range ids {
		classes[id] = ClassNone
	}
	if len(ids) == 0 {
		return classes, nil
	}

	var edges []models.RelationshipEdge
	err := s.db.WithContext(ctx).
		Where("(user_low_id = ? AND user_high_id IN ?) OR (user_high_id = ? AND user_low_id IN ?)",
			self, ids, self, ids).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	for _, e := range edges {
		other := e.Other(self)
		switch e.State {
		case models.EdgeStateFriends:
			classes[other] = ClassFriend
		case models.EdgeStatePending:
			if e.ActorID == self {
				classes[other] = ClassSent
			} else {
				classes[other] = ClassPending
			}
		}
	}
	return classes, nil
}

// BlockedPairIDs returns the IDs among candidates that share a blocked edge
// with self, in either direction.
func (s *Store) BlockedPairIDs(ctx context.Context, self uint, ids []uint) (map[uint]bool, error) {
	blocked := make(map[uint]bool)
	if len(ids) == 0 {
		return blocked, nil
	}

	var edges []models.RelationshipEdge
	err := s.db.WithContext(ctx).
		Where("state = ? AND ((user_low_id = ? AND user_high_id IN ?) OR (user_high_id = ? AND user_low_id IN ?))",
			models.EdgeStateBlocked, self, ids, self, ids).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		blocked[e.Other(self)] = true
	}
	return blocked, nil
}
