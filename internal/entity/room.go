package entity

// Room is a user-decorated virtual space. The engine only cares about how
// many rooms a user created; layout and furniture live elsewhere.
type Room struct {
	Base
	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Name  string
	Theme string
}
