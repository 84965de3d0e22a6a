package models

import "time"

// Admin represents a gym administrator account (PostgreSQL). Admins carry two
// push token slots: a persistent web token and a rotating mobile token.
type Admin struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	UID         string `json:"uid" gorm:"size:128;uniqueIndex"`
	Name        string `json:"name"`
	GymID       string `json:"gym_id" gorm:"size:128;index"`
	WebFCMToken string `json:"-" gorm:"column:web_fcm_token"`
	FCMToken    string `json:"-" gorm:"column:fcm_token"`
}

// Gym links a gym to its administrator account (PostgreSQL)
type Gym struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	GymID    string `json:"gym_id" gorm:"size:128;uniqueIndex"`
	Name     string `json:"name"`
	AdminUID string `json:"admin_uid" gorm:"size:128"`
	OwnerUID string `json:"owner_uid" gorm:"size:128"`
}

// AdminNotification is one entry in an admin's notification feed (PostgreSQL),
// backing the stats endpoint.
type AdminNotification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AdminUID  string    `json:"admin_uid" gorm:"size:128;index"`
	Type      string    `json:"type" gorm:"size:30"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
