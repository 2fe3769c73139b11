// Package model defines the persistent entities as plain structs with
// foreign-key id fields. Relationships are resolved by explicit
// queries in the repository layer, never by attribute traversal.
package model

import "time"

// Moderation status of a pereval record. Only StatusNew is ever
// assigned by this service; records keep it until a moderator acts
// through some other channel.
const (
	StatusNew      = "new"
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// User is the submitter identity, deduplicated by email. Once created
// it is never updated or deleted by this service.
type User struct {
	ID    int     `json:"id"`
	Email string  `json:"email"`
	Phone string  `json:"phone"`
	Fam   string  `json:"fam"`
	Name  string  `json:"name"`
	Otc   *string `json:"otc"`
}

// Coords is a geographic point. Rows are created fresh on every
// submission and mutated in place on edit; they are never shared
// between passes.
type Coords struct {
	ID        int     `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Height    int     `json:"height"`
}

// Pereval is the core submitted record describing a mountain crossing
// point.
type Pereval struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	CoordID     int       `json:"coord_id"`
	BeautyTitle *string   `json:"beauty_title"`
	Title       string    `json:"title"`
	OtherTitles *string   `json:"other_titles"`
	Connect     *string   `json:"connect"`
	AddTime     time.Time `json:"add_time"`
	WinterLevel *string   `json:"winter_level"`
	SummerLevel *string   `json:"summer_level"`
	AutumnLevel *string   `json:"autumn_level"`
	SpringLevel *string   `json:"spring_level"`
	Status      string    `json:"status"`
}

// PerevalImage belongs to exactly one pereval. Img is an opaque
// payload, typically a URL or an encoded blob.
type PerevalImage struct {
	ID        int     `json:"id"`
	PerevalID int     `json:"pereval_id"`
	ImgTitle  *string `json:"img_title"`
	Img       string  `json:"img"`
}

// PerevalDetail is a pereval with its owner, coordinates, and image
// collection resolved. It is the shape returned by fetch operations.
type PerevalDetail struct {
	Pereval
	User   User           `json:"user"`
	Coords Coords         `json:"coords"`
	Images []PerevalImage `json:"images"`
}
