// Package feature defines the input-feature contract consumed by the
// matching engine: tag lookup plus geometry classification.
//
// Geometry predicates are not mutually exclusive. A closed way without an
// explicit area tag can be interpreted as a line or as a polygon, so
// CanBeLine and CanBePolygon may both report true for the same feature.
package feature

// Feature is an input element with tags and a geometry classification.
type Feature interface {
	// Tags returns the full tag set. Callers must not mutate the result.
	Tags() map[string]string

	// GetTag returns the value for key and whether the key is present.
	GetTag(key string) (string, bool)

	// HasTag reports whether key is present.
	HasTag(key string) bool

	IsPoint() bool
	CanBeLine() bool
	CanBePolygon() bool
}

// Simple is a plain in-memory Feature, used by tests and by the tags-only
// convenience queries where geometry is irrelevant.
type Simple struct {
	tags    map[string]string
	point   bool
	line    bool
	polygon bool
}

// NewPoint returns a point feature with the given tags.
func NewPoint(tags map[string]string) Simple {
	return Simple{tags: tags, point: true}
}

// NewLine returns a feature that can only be interpreted as a line.
func NewLine(tags map[string]string) Simple {
	return Simple{tags: tags, line: true}
}

// NewPolygon returns a feature that can only be interpreted as a polygon.
func NewPolygon(tags map[string]string) Simple {
	return Simple{tags: tags, polygon: true}
}

// NewClosedWay returns a feature that can be interpreted as a line or as a
// polygon, like an OSM closed way without an explicit area tag.
func NewClosedWay(tags map[string]string) Simple {
	return Simple{tags: tags, line: true, polygon: true}
}

// FromTags returns a feature with no geometry classification at all.
// Geometry-specialized indexes fall back to the point index for it.
func FromTags(tags map[string]string) Simple {
	return Simple{tags: tags}
}

func (s Simple) Tags() map[string]string {
	if s.tags == nil {
		return map[string]string{}
	}
	return s.tags
}

func (s Simple) GetTag(key string) (string, bool) {
	v, ok := s.tags[key]
	return v, ok
}

func (s Simple) HasTag(key string) bool {
	_, ok := s.tags[key]
	return ok
}

func (s Simple) IsPoint() bool      { return s.point }
func (s Simple) CanBeLine() bool    { return s.line }
func (s Simple) CanBePolygon() bool { return s.polygon }
