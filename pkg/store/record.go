package store

import "time"

// Subscription registers a callback URL for a target event stream. The pair
// (target, callback_url) is the uniqueness key: registering the same
// callback for the same target twice returns the existing record.
type Subscription struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Target      string    `bson:"target" json:"target"`
	CallbackURL string    `bson:"callback_url" json:"callback_url"`
	Secret      string    `bson:"secret,omitempty" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Publication declares an event stream that events may be published to.
// The target name alone is the uniqueness key.
type Publication struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Target    string    `bson:"target" json:"target"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
