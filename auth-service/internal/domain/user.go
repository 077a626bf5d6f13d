package domain

import "time"

// User is the profile document in the "users" collection, keyed by the
// identity provider uid. Auth state (password, email verification, disabled
// flag) lives in the identity provider, not here.
type User struct {
	UID       string    `firestore:"uid" json:"uid"`
	Name      string    `firestore:"name" json:"name"`
	Email     string    `firestore:"email" json:"email"`
	PhotoURL  string    `firestore:"photoURL,omitempty" json:"photoURL,omitempty"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}
