package layout

import "encoding/json"

// MarshalGeometry serializes a geometry to JSON for caching and transport.
func MarshalGeometry(g *Geometry) ([]byte, error) {
	return json.Marshal(g)
}

// UnmarshalGeometry deserializes a geometry produced by [MarshalGeometry].
func UnmarshalGeometry(data []byte) (*Geometry, error) {
	var g Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// MarshalConfig serializes a layout configuration. Its hash participates
// in layout cache keys so geometry recomputes when the configuration
// changes.
func MarshalConfig(c Config) ([]byte, error) {
	return json.Marshal(c)
}
