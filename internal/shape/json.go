package shape

import (
	"encoding/json"
	"fmt"
)

type shapeJSON struct {
	ID       string          `json:"id"`
	Kind     Kind            `json:"kind"`
	Attrs    json.RawMessage `json:"attrs"`
	Style    Style           `json:"style"`
	Rotation float64         `json:"rotation,omitempty"`
}

func (s *Shape) MarshalJSON() ([]byte, error) {
	attrs, err := json.Marshal(s.Geometry)
	if err != nil {
		return nil, fmt.Errorf("marshal %s attrs: %w", s.Kind(), err)
	}
	return json.Marshal(shapeJSON{
		ID:       s.ID,
		Kind:     s.Kind(),
		Attrs:    attrs,
		Style:    s.Style,
		Rotation: s.Rotation,
	})
}

func (s *Shape) UnmarshalJSON(data []byte) error {
	var raw shapeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	kind, err := ParseKind(string(raw.Kind))
	if err != nil {
		return err
	}
	g, _ := DefaultGeometry(kind)
	if len(raw.Attrs) > 0 {
		if err := json.Unmarshal(raw.Attrs, g); err != nil {
			return fmt.Errorf("invalid %s attrs: %w", kind, err)
		}
	}

	*s = Shape{
		ID:       raw.ID,
		Geometry: g,
		Style:    raw.Style,
		Rotation: raw.Rotation,
	}
	return nil
}
