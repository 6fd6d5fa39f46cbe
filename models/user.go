package models

import "time"

// User is the slice of the user record the payment core needs: identity for
// booking authorization and the FCM token for payment pushes.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"fcm_token,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
