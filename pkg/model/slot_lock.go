package model

import "time"

// SlotLock is an advisory lock document preventing two concurrent booking
// writes from checking the same resource at once. The unique _id carries the
// resource ref; expires_at backs a TTL index so crashed holders cannot wedge
// a resource.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
