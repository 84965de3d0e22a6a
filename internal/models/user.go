package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a mobile app user account (MongoDB, users collection).
// Regular users carry a single fallback push token slot.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID      string             `bson:"uid" json:"uid"`
	Name     string             `bson:"name" json:"name"`
	FCMToken string             `bson:"fcm_token,omitempty" json:"-"`
}

// GymInfo is the legacy gym lookup document (MongoDB, gym_info collection),
// queried as a fallback when a gym has no row in PostgreSQL.
type GymInfo struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GymID    string             `bson:"gym_id" json:"gym_id"`
	Name     string             `bson:"name" json:"name"`
	AdminUID string             `bson:"admin_uid,omitempty" json:"admin_uid,omitempty"`
	OwnerUID string             `bson:"owner_uid,omitempty" json:"owner_uid,omitempty"`
}
