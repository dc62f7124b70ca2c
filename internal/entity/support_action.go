package entity

// SupportAction records one encouragement a user gave to a friend (a cheer,
// a supportive comment reaction). Rows are high-volume, so they use snowflake
// ids instead of uuids.
type SupportAction struct {
	SnowFlakeBase

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	RecipientID string `gorm:"index"`
	Recipient   User   `gorm:"foreignKey:RecipientID"`

	Kind string
}
