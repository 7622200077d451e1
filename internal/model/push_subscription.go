package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Workers []SubscriptionWorker `gorm:"foreignKey:Endpoint;references:Endpoint"`
}

// SubscriptionWorker maps a subscription to a worker column it follows.
type SubscriptionWorker struct {
	Endpoint string `gorm:"primaryKey"`
	Worker   string `gorm:"primaryKey;size:128;index"`
}
