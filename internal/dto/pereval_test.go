package dto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampAcceptsRFC3339(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2025-02-15T10:30:00+03:00"`), &ts); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	want := time.Date(2025, 2, 15, 10, 30, 0, 0, time.FixedZone("", 3*3600))
	if !ts.Time.Equal(want) {
		t.Errorf("parsed %v, want %v", ts.Time, want)
	}
}

func TestTimestampAcceptsNaiveISO8601(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"2025-02-15T00:00:00"`), &ts); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	want := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	if !ts.Time.Equal(want) {
		t.Errorf("parsed %v, want %v (naive values are UTC)", ts.Time, want)
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("UnmarshalJSON accepted a non-timestamp string")
	}
	if err := json.Unmarshal([]byte(`42`), &ts); err == nil {
		t.Error("UnmarshalJSON accepted a JSON number")
	}
}

func TestTimestampMarshalsRFC3339(t *testing.T) {
	ts := Timestamp{Time: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)}
	out, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(out) != `"2025-02-15T00:00:00Z"` {
		t.Errorf("marshaled %s", out)
	}
}

func TestSubmitDataRequestValidation(t *testing.T) {
	lat, lon, height := 45.3842, 7.1525, 1200

	valid := func() *SubmitDataRequest {
		return &SubmitDataRequest{
			Title: "Pkhiya",
			User: UserPayload{
				Email: "climber@example.com",
				Phone: "+7 999 000 11 22",
				Fam:   "Ivanov",
				Name:  "Pyotr",
			},
			Coords: CoordsPayload{Latitude: &lat, Longitude: &lon, Height: &height},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*SubmitDataRequest)
	}{
		{"missing title", func(r *SubmitDataRequest) { r.Title = "" }},
		{"missing email", func(r *SubmitDataRequest) { r.User.Email = "" }},
		{"malformed email", func(r *SubmitDataRequest) { r.User.Email = "not-an-email" }},
		{"missing latitude", func(r *SubmitDataRequest) { r.Coords.Latitude = nil }},
		{"missing height", func(r *SubmitDataRequest) { r.Coords.Height = nil }},
		{"image without payload", func(r *SubmitDataRequest) {
			r.Images = []ImagePayload{{Img: ""}}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(req)
			if err := req.Validate(); err == nil {
				t.Error("invalid request accepted")
			}
		})
	}
}

func TestUpdateRequestDistinguishesAbsentFromEmpty(t *testing.T) {
	var absent UpdatePerevalRequest
	if err := json.Unmarshal([]byte(`{"title": "Renamed"}`), &absent); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if absent.Images != nil {
		t.Errorf("absent images decoded as %v, want nil", absent.Images)
	}
	if absent.Coords != nil {
		t.Errorf("absent coords decoded as %v, want nil", absent.Coords)
	}

	var cleared UpdatePerevalRequest
	if err := json.Unmarshal([]byte(`{"images": []}`), &cleared); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cleared.Images == nil {
		t.Fatal("explicit empty images decoded as nil")
	}
	if len(*cleared.Images) != 0 {
		t.Errorf("images = %v, want empty", *cleared.Images)
	}
	if cleared.Title != nil {
		t.Errorf("absent title decoded as %v, want nil", cleared.Title)
	}
}

func TestUpdateRequestValidatesOptionalImages(t *testing.T) {
	req := &UpdatePerevalRequest{ID: 5, Images: &[]ImagePayload{{Img: ""}}}
	if err := req.Validate(); err == nil {
		t.Error("image without payload accepted")
	}

	req = &UpdatePerevalRequest{ID: 5}
	if err := req.Validate(); err != nil {
		t.Errorf("field-free patch rejected: %v", err)
	}
}

func TestEnvelopesMirrorStatusOntoWire(t *testing.T) {
	if got := NewSubmitFailure("boom").HTTPStatus(); got != 500 {
		t.Errorf("submit failure status = %d, want 500", got)
	}
	if got := (SubmitDataResponse{Status: 404}).HTTPStatus(); got != 404 {
		t.Errorf("status = %d, want 404", got)
	}
	if got := (EmailLookupErrorResponse{Status: 404}).HTTPStatus(); got != 404 {
		t.Errorf("status = %d, want 404", got)
	}
}

func TestSubmitFailureSerializesNullID(t *testing.T) {
	out, err := json.Marshal(NewSubmitFailure("boom"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(out, &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(body["id"]) != "null" {
		t.Errorf("id = %s, want null", body["id"])
	}
}
