package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Column limits of the pet_posts table, counted in characters.
const (
	MaxTitleLength           = 100
	MaxLastSeenAddressLength = 255
	MaxImageURLLength        = 255
)

// PetType is the kind of animal a post describes.
type PetType string

// Supported pet types, in the order they are listed to clients.
const (
	PetTypeCat   PetType = "cat"
	PetTypeDog   PetType = "dog"
	PetTypeBird  PetType = "bird"
	PetTypeOther PetType = "other"
)

// PetTypes returns every supported PetType.
func PetTypes() []PetType {
	return []PetType{PetTypeCat, PetTypeDog, PetTypeBird, PetTypeOther}
}

// IsValid reports whether t is a supported pet type.
func (t PetType) IsValid() bool {
	switch t {
	case PetTypeCat, PetTypeDog, PetTypeBird, PetTypeOther:
		return true
	}
	return false
}

// PetStatus says whether a pet is still missing or has been found.
type PetStatus string

// Possible pet status values
const (
	PetStatusMissing PetStatus = "missing"
	PetStatusFound   PetStatus = "found"
)

// PetStatuses returns every supported PetStatus.
func PetStatuses() []PetStatus {
	return []PetStatus{PetStatusMissing, PetStatusFound}
}

// IsValid reports whether s is a supported status.
func (s PetStatus) IsValid() bool {
	return s == PetStatusMissing || s == PetStatusFound
}

var (
	ErrEmptyPetPostTitle      = errors.New("pet post title cannot be empty")
	ErrEmptyPetPostOwner      = errors.New("pet post owner cannot be empty")
	ErrInvalidPetType         = errors.New("invalid pet type")
	ErrInvalidPetStatus       = errors.New("invalid pet status")
	ErrEmptyLastSeenDate      = errors.New("pet post last seen date cannot be empty")
	ErrEmptyLastSeenAddress   = errors.New("pet post last seen address cannot be empty")
	ErrPetPostTitleTooLong    = errors.New(TooLongMessage("title", MaxTitleLength))
	ErrLastSeenAddressTooLong = errors.New(TooLongMessage("last_seen_address", MaxLastSeenAddressLength))
	ErrImageURLTooLong        = errors.New(TooLongMessage("image_url", MaxImageURLLength))
)

// PetPost is a lost or found pet report owned by exactly one account.
type PetPost struct {
	ID              int64
	Title           string
	Description     string
	PetType         PetType
	Status          PetStatus
	ImageURL        *string
	LastSeenAddress string
	LastSeenDate    time.Time
	Latitude        *float64
	Longitude       *float64
	CreatedAt       time.Time
	UserID          int64
}

// Validate checks the invariants a persisted post must satisfy.
func (p *PetPost) Validate() error {
	if p.Title == "" {
		return ErrEmptyPetPostTitle
	}
	if p.UserID == 0 {
		return ErrEmptyPetPostOwner
	}
	if !p.PetType.IsValid() {
		return ErrInvalidPetType
	}
	if !p.Status.IsValid() {
		return ErrInvalidPetStatus
	}
	if p.LastSeenAddress == "" {
		return ErrEmptyLastSeenAddress
	}
	if p.LastSeenDate.IsZero() {
		return ErrEmptyLastSeenDate
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		return ErrPetPostTitleTooLong
	}
	if utf8.RuneCountInString(p.LastSeenAddress) > MaxLastSeenAddressLength {
		return ErrLastSeenAddressTooLong
	}
	if p.ImageURL != nil && utf8.RuneCountInString(*p.ImageURL) > MaxImageURLLength {
		return ErrImageURLTooLong
	}
	return nil
}

// IsOwnedBy reports whether userID owns the post.
func (p *PetPost) IsOwnedBy(userID int64) bool {
	return p.UserID == userID
}

// PetPostFilter narrows a listing. Empty fields do not filter.
type PetPostFilter struct {
	PetType string
	Status  string
}
