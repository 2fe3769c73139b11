// Package dto defines the request and response payloads of the HTTP
// surface. Optional request fields are pointers so that an absent
// field is distinguishable from a zero value, which is what gives the
// PATCH endpoint its field-level semantics.
package dto

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Timestamp accepts both RFC 3339 and naive ISO 8601 values
// ("2006-01-02T15:04:05"), which older clients of this API send.
// Naive values are interpreted as UTC. It marshals as RFC 3339.
type Timestamp struct {
	time.Time
}

const naiveLayout = "2006-01-02T15:04:05"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string")
	}
	s = s[1 : len(s)-1]

	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(naiveLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", s)
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Time.Format(time.RFC3339) + `"`), nil
}

// UserPayload is the submitter block embedded in a submission.
type UserPayload struct {
	Email string  `json:"email" validate:"required,email"`
	Phone string  `json:"phone" validate:"required"`
	Fam   string  `json:"fam" validate:"required"`
	Name  string  `json:"name" validate:"required"`
	Otc   *string `json:"otc"`
}

// CoordsPayload carries a geographic point. All three fields are
// pointers: on PATCH they must be supplied (and are overwritten)
// together.
type CoordsPayload struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Height    *int     `json:"height" validate:"required"`
}

// ImagePayload is one image attached to a submission.
type ImagePayload struct {
	ImgTitle *string `json:"img_title"`
	Img      string  `json:"img" validate:"required"`
}

// SubmitDataRequest is the body of POST /submitData.
type SubmitDataRequest struct {
	BeautyTitle *string        `json:"beauty_title"`
	Title       string         `json:"title" validate:"required"`
	OtherTitles *string        `json:"other_titles"`
	Connect     *string        `json:"connect"`
	AddTime     *Timestamp     `json:"add_time"`
	User        UserPayload    `json:"user" validate:"required"`
	Coords      CoordsPayload  `json:"coords" validate:"required"`
	WinterLevel *string        `json:"winter_level"`
	SummerLevel *string        `json:"summer_level"`
	AutumnLevel *string        `json:"autumn_level"`
	SpringLevel *string        `json:"spring_level"`
	Images      []ImagePayload `json:"images" validate:"dive"`
}

func (r *SubmitDataRequest) Validate() error {
	return validate.Struct(r)
}

// GetPerevalRequest addresses a single pereval by id.
type GetPerevalRequest struct {
	ID int `param:"id" validate:"required,min=1"`
}

func (r *GetPerevalRequest) Validate() error {
	return validate.Struct(r)
}

// UpdatePerevalRequest is the body of PATCH /submitData/{id}. Every
// field is optional; a nil field is left untouched. Images is a
// pointer to a slice so that an explicit empty list (clear all images)
// is distinguishable from an omitted one.
type UpdatePerevalRequest struct {
	ID          int              `param:"id" validate:"required,min=1"`
	BeautyTitle *string          `json:"beauty_title"`
	Title       *string          `json:"title"`
	OtherTitles *string          `json:"other_titles"`
	Connect     *string          `json:"connect"`
	AddTime     *Timestamp       `json:"add_time"`
	Coords      *CoordsPayload   `json:"coords"`
	WinterLevel *string          `json:"winter_level"`
	SummerLevel *string          `json:"summer_level"`
	AutumnLevel *string          `json:"autumn_level"`
	SpringLevel *string          `json:"spring_level"`
	Images      *[]ImagePayload  `json:"images" validate:"omitempty,dive"`
}

func (r *UpdatePerevalRequest) Validate() error {
	return validate.Struct(r)
}

// ListPerevalsRequest selects all perevals owned by an email.
type ListPerevalsRequest struct {
	UserEmail string `query:"user_email" validate:"required,email"`
}

func (r *ListPerevalsRequest) Validate() error {
	return validate.Struct(r)
}

// SubmitDataResponse is the envelope of POST /submitData and the
// failure envelope of GET /submitData/{id}. Status mirrors the HTTP
// status code, which legacy clients read from the body.
type SubmitDataResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	ID      *int   `json:"id"`
}

// HTTPStatus lets the response pick the wire status code.
func (r SubmitDataResponse) HTTPStatus() int {
	return r.Status
}

// UpdateResponse is the envelope of PATCH /submitData/{id}: a state
// flag (1 = updated, 0 = rejected) plus a diagnostic message. The
// endpoint answers 200 either way; callers inspect the flag.
type UpdateResponse struct {
	State   int    `json:"state"`
	Message string `json:"message"`
}

// EmailLookupErrorResponse is the failure envelope of
// GET /submitData/?user_email=..., echoing the email back.
type EmailLookupErrorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	UserEmail string `json:"user_email"`
}

func (r EmailLookupErrorResponse) HTTPStatus() int {
	return r.Status
}

// NewSubmitFailure builds the legacy 500 envelope for a failed
// submission.
func NewSubmitFailure(message string) SubmitDataResponse {
	return SubmitDataResponse{Status: http.StatusInternalServerError, Message: message, ID: nil}
}
