// Package domain defines the core types shared across the Alibi server.
package domain

import "time"

// Excuse is a persisted excuse produced by the remote generator.
// Rows are append-only; the ID is the join key for ratings, shares, and favorites.
type Excuse struct {
	ID                  string    `json:"id"`
	Situation           string    `json:"situation"`
	Tone                string    `json:"tone"`
	Length              string    `json:"length"`
	Excuse              string    `json:"excuse"`
	BelievabilityRating int       `json:"believabilityRating"`
	CreatedAt           time.Time `json:"createdAt"`
}

// UltimateSituation tags excuses produced by the Easter-egg generation path.
const UltimateSituation = "ULTIMATE_EASTER_EGG"

// Rating is a single 1-5 star submission for an excuse. Append-only;
// a device may rate the same excuse more than once.
type Rating struct {
	ID        string    `json:"id"`
	ExcuseID  string    `json:"excuseId"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// RatingSummary is the aggregate over all ratings for one excuse.
// Zero-valued when the excuse has no ratings.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
}

// Share records one share action for an excuse. Purely a counter feed.
type Share struct {
	ID          string    `json:"id"`
	ExcuseID    string    `json:"excuseId"`
	ShareMethod string    `json:"shareMethod"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Favorite is a per-device saved excuse reference.
// (ExcuseID, DeviceID) is unique; a device cannot favorite the same excuse twice.
type Favorite struct {
	ID        string    `json:"id"`
	ExcuseID  string    `json:"excuseId"`
	DeviceID  string    `json:"deviceId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FavoriteWithExcuse is a favorite joined with its excuse text and current
// rating aggregate, as returned by the favorites listing.
type FavoriteWithExcuse struct {
	Favorite
	Excuse              string  `json:"excuse"`
	Situation           string  `json:"situation"`
	Tone                string  `json:"tone"`
	Length              string  `json:"length"`
	BelievabilityRating int     `json:"believabilityRating"`
	AverageRating       float64 `json:"averageRating"`
}

// TopRatedExcuse is an excuse joined with its rating aggregate and share count.
type TopRatedExcuse struct {
	Excuse
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
	ShareCount    int     `json:"shareCount"`
}
