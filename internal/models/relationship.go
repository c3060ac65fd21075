package models

import "time"

// EdgeState is the tagged state of the relationship between two users.
// A pair with no stored edge is in the implicit "none" state.
type EdgeState string

const (
	// EdgeStatePending means a friend request is in flight; ActorID is the requester.
	EdgeStatePending EdgeState = "pending"

	// EdgeStateFriends means the request was accepted and the users are friends.
	EdgeStateFriends EdgeState = "friends"

	// EdgeStateBlocked means one party blocked the other; ActorID is the blocker.
	// Neither side can interact while the block holds.
	EdgeStateBlocked EdgeState = "blocked"
)

// RelationshipEdge is the single authoritative record for an unordered user
// pair. The pair is stored canonically (UserLowID < UserHighID) so both
// parties always resolve the same row, and the composite primary key makes
// a second, conflicting edge for the same pair impossible.
type RelationshipEdge struct {
	UserLowID  uint      `gorm:"primaryKey"`
	UserHighID uint      `gorm:"primaryKey"`
	State      EdgeState `gorm:"type:varchar(20);not null;index"`

	// ActorID is the requester while pending and the blocker while blocked.
	// Zero for established friendships, where no side holds a role.
	ActorID uint `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	UserLow  User `gorm:"foreignKey:UserLowID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	UserHigh User `gorm:"foreignKey:UserHighID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Other returns the identity on the edge that is not self.
func (e *RelationshipEdge) Other(self uint) uint {
	if e.UserLowID == self {
		return e.UserHighID
	}
	return e.UserLowID
}
