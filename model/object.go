package model

import "time"

// Object class labels produced by the classifier.
const (
	ClassPayload    = "Payload"
	ClassRocketBody = "Rocket Body"
	ClassDebris     = "Debris"
	ClassUnknown    = "Unknown"
)

// UnknownName is used for two-line element sets that carry no name line.
const UnknownName = "UNKNOWN"

// ElementSet is a two-line element set as published by CelesTrak.
type ElementSet struct {
	Line1 string
	Line2 string
}

// Classification is the classifier's verdict for one object.
type Classification struct {
	Label      string
	Confidence float64 // 0..1
}

// SpaceObject is a tracked object: its identity plus what the position
// source needs to propagate it. Treat as immutable once loaded; helpers
// return modified copies.
type SpaceObject struct {
	Name     string
	NoradID  int // 0 when unknown
	Epoch    time.Time
	Elements ElementSet

	// Class is nil until the object has been classified.
	Class *Classification
}

// WithClass returns a copy of o carrying the given classification.
func (o SpaceObject) WithClass(c Classification) SpaceObject {
	o.Class = &c
	return o
}

// Label returns the classification label, or "" when unclassified.
func (o SpaceObject) Label() string {
	if o.Class == nil {
		return ""
	}
	return o.Class.Label
}
