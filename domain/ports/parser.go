package ports

// ConfigParser parses a raw configuration document into a generic map.
type ConfigParser interface {
	// Parse unmarshals document bytes into a map keyed by field name.
	Parse(data []byte) (map[string]any, error)
}
