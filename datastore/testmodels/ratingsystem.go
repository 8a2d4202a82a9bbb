/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds entity types shared by model and backend tests.
package testmodels

import (
	"github.com/go-openapi/strfmt"
	"github.com/suparena/entityodm/registry"
)

// Collections the fixture types are bound to.
const (
	RatingSystemCollection = "ratingSystems"
	PlayerCollection       = "players"
)

func init() {
	registry.RegisterCollection[RatingSystem](RatingSystemCollection)
	registry.RegisterCollection[Player](PlayerCollection)
}

// RatingSystem is a generated-style model with pointer fields and
// strfmt.DateTime timestamps.
type RatingSystem struct {

	// Timestamp when the rating system was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"createdAt" validate:"required"`

	// A description of the rating system.
	Description *string `json:"description,omitempty"`

	// Name of the rating system.
	// Required: true
	Name *string `json:"name" validate:"required"`

	// site Url
	SiteURL string `json:"siteUrl,omitempty" validate:"omitempty,url"`

	// Timestamp when the rating system was last updated.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"updatedAt,omitempty"`
}

// Player is a rated player of a rating system.
type Player struct {
	RatingSystemID string          `json:"ratingSystemId" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	Rating         int             `json:"rating" validate:"gte=0"`
	LastPlayed     strfmt.DateTime `json:"lastPlayed"`
}
