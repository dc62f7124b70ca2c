package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/steadyhabits/backend/pkg/enum"
	"gorm.io/gorm"
)

type FriendshipStatus string

var (
	FriendshipPending  = enum.New(FriendshipStatus("pending"))
	FriendshipAccepted = enum.New(FriendshipStatus("accepted"))
	FriendshipDeclined = enum.New(FriendshipStatus("declined"))
	FriendshipBlocked  = enum.New(FriendshipStatus("blocked"))
)

// Friendship is stored directionally (who requested whom) but is unique per
// unordered pair: PairKey is derived from the two user ids in canonical order
// and carries a unique index, so (a,b) and (b,a) can never coexist.
type Friendship struct {
	Base
	RequesterID string `gorm:"index"`
	Requester   User   `gorm:"foreignKey:RequesterID"`

	AddresseeID string `gorm:"index"`
	Addressee   User   `gorm:"foreignKey:AddresseeID"`

	Status FriendshipStatus

	PairKey string `gorm:"uniqueIndex"`
}

// BeforeCreate validates the pair and fills the canonical PairKey. It must
// not run on updates: status transitions go through Model(...).Updates with a
// zero-value receiver.
func (f *Friendship) BeforeCreate(*gorm.DB) error {
	if f.RequesterID == f.AddresseeID {
		return errors.New("a friendship cannot reference the same user twice")
	}

	f.PairKey = FriendshipPairKey(f.RequesterID, f.AddresseeID)
	return nil
}

func FriendshipPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}

	return fmt.Sprintf("%s/%s", a, b)
}

// BestFriend rows are capped per user; the cap is enforced by an atomic
// conditional insert in the repository, never by a read-then-insert.
type BestFriend struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	FriendID string `gorm:"primaryKey"`
	Friend   User   `gorm:"foreignKey:FriendID"`

	CreatedAt time.Time
}
