package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// FormMode selects which rules apply to a PetPostForm.
type FormMode int

const (
	// FormCreate requires every mandatory field.
	FormCreate FormMode = iota
	// FormUpdate only checks the fields that were submitted.
	FormUpdate
)

// Form field names as they appear on the wire and in messages.
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldPetType         = "pet_type"
	FieldStatus          = "status"
	FieldLastSeenAddress = "last_seen_address"
	FieldLastSeenDate    = "last_seen_date"
	FieldLatitude        = "latitude"
	FieldLongitude       = "longitude"
)

// PetPostForm is a raw pet post submission. A nil field was not sent at all;
// a non-nil field holds exactly what the client sent.
type PetPostForm struct {
	Title           *string
	Description     *string
	PetType         *string
	Status          *string
	LastSeenAddress *string
	LastSeenDate    *string
	Latitude        *string
	Longitude       *string
}

// requiredFields lists the mandatory fields in message order.
func (f *PetPostForm) requiredFields() []struct {
	name  string
	value *string
} {
	return []struct {
		name  string
		value *string
	}{
		{FieldTitle, f.Title},
		{FieldDescription, f.Description},
		{FieldPetType, f.PetType},
		{FieldLastSeenAddress, f.LastSeenAddress},
		{FieldLastSeenDate, f.LastSeenDate},
	}
}

// Validate runs every check and returns all messages in a fixed order:
// required fields, field lengths, pet_type, status, latitude, longitude.
// An empty result means the form is valid. Dates are not checked here;
// see ParseLastSeenDate.
func (f *PetPostForm) Validate(mode FormMode) []string {
	var msgs []string

	for _, field := range f.requiredFields() {
		if mode == FormUpdate && field.value == nil {
			continue
		}
		if isBlank(field.value) {
			msgs = append(msgs, RequiredMessage(field.name))
		}
	}

	for _, limit := range []struct {
		name  string
		value *string
		max   int
	}{
		{FieldTitle, f.Title, MaxTitleLength},
		{FieldLastSeenAddress, f.LastSeenAddress, MaxLastSeenAddressLength},
	} {
		if limit.value != nil && utf8.RuneCountInString(*limit.value) > limit.max {
			msgs = append(msgs, TooLongMessage(limit.name, limit.max))
		}
	}

	if !isBlank(f.PetType) && !PetType(*f.PetType).IsValid() {
		msgs = append(msgs, FieldPetType+" must be one of: "+joinValues(PetTypes()))
	}

	if !isBlank(f.Status) && !PetStatus(*f.Status).IsValid() {
		msgs = append(msgs, FieldStatus+" must be one of: "+joinValues(PetStatuses()))
	}

	if _, err := parseCoordinate(f.Latitude); err != nil {
		msgs = append(msgs, FieldLatitude+" must be a valid number")
	}
	if _, err := parseCoordinate(f.Longitude); err != nil {
		msgs = append(msgs, FieldLongitude+" must be a valid number")
	}

	return msgs
}

// Check wraps Validate, returning a *ValidationError when messages exist.
func (f *PetPostForm) Check(mode FormMode) error {
	if msgs := f.Validate(mode); len(msgs) > 0 {
		return NewValidationError(msgs...)
	}
	return nil
}

// NewPetPost builds a post from a validated create form.
func (f *PetPostForm) NewPetPost(ownerID int64, lastSeen time.Time, imageURL *string) (*PetPost, error) {
	post := &PetPost{
		Title:           *f.Title,
		Description:     *f.Description,
		PetType:         PetType(*f.PetType),
		Status:          PetStatusMissing,
		ImageURL:        imageURL,
		LastSeenAddress: *f.LastSeenAddress,
		LastSeenDate:    lastSeen,
		CreatedAt:       time.Now().UTC(),
		UserID:          ownerID,
	}
	if !isBlank(f.Status) {
		post.Status = PetStatus(*f.Status)
	}

	var err error
	if post.Latitude, err = parseCoordinate(f.Latitude); err != nil {
		return nil, NewValidationError(FieldLatitude + " must be a valid number")
	}
	if post.Longitude, err = parseCoordinate(f.Longitude); err != nil {
		return nil, NewValidationError(FieldLongitude + " must be a valid number")
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}
	return post, nil
}

// ApplyTo copies the submitted fields of a validated update form onto post.
// lastSeen is only used when the form carried last_seen_date, and imageURL
// replaces the existing image only when non-nil. Blank status, latitude and
// longitude values leave the stored values untouched.
func (f *PetPostForm) ApplyTo(post *PetPost, lastSeen *time.Time, imageURL *string) error {
	if f.Title != nil {
		post.Title = *f.Title
	}
	if f.Description != nil {
		post.Description = *f.Description
	}
	if f.PetType != nil {
		post.PetType = PetType(*f.PetType)
	}
	if !isBlank(f.Status) {
		post.Status = PetStatus(*f.Status)
	}
	if f.LastSeenAddress != nil {
		post.LastSeenAddress = *f.LastSeenAddress
	}
	if lastSeen != nil {
		post.LastSeenDate = *lastSeen
	}
	if imageURL != nil {
		post.ImageURL = imageURL
	}

	if lat, err := parseCoordinate(f.Latitude); err != nil {
		return NewValidationError(FieldLatitude + " must be a valid number")
	} else if lat != nil {
		post.Latitude = lat
	}
	if lng, err := parseCoordinate(f.Longitude); err != nil {
		return NewValidationError(FieldLongitude + " must be a valid number")
	} else if lng != nil {
		post.Longitude = lng
	}

	return post.Validate()
}

// isoLayouts are tried in order by ParseLastSeenDate. Fractional seconds are
// accepted by time.Parse after the seconds field without being spelled out.
var isoLayouts = []struct {
	layout string
	zoned  bool
}{
	{"2006-01-02T15:04:05Z07:00", true},
	{"2006-01-02T15:04Z07:00", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02", false},
}

// ParseLastSeenDate parses an ISO-8601 date or date-time. A trailing "Z" is
// the same as "+00:00", a space may replace the "T" separator, and values
// without an offset are taken as UTC. The result is always in UTC.
func ParseLastSeenDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}

	for _, l := range isoLayouts {
		var (
			t   time.Time
			err error
		)
		if l.zoned {
			t, err = time.Parse(l.layout, s)
		} else {
			t, err = time.ParseInLocation(l.layout, s, time.UTC)
		}
		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, ErrInvalidDate
}

// parseCoordinate parses an optional float. Absent or blank input yields nil.
func parseCoordinate(s *string) (*float64, error) {
	if isBlank(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
