package domain

// Declared type of a stored configuration value.
type ConfigType string

const (
	ConfigInteger    ConfigType = "integer"
	ConfigFloat      ConfigType = "float"
	ConfigBoolean    ConfigType = "boolean"
	ConfigString     ConfigType = "string"
	ConfigEnumString ConfigType = "enum_string"
	ConfigJSONArray  ConfigType = "json_array"
	ConfigJSONObject ConfigType = "json_object"
)

// A configuration entry decoded according to its declared type.
// Raw keeps the stored text; Value holds the decoded form
// (int64, float64, bool, string, []any or map[string]any).
type ConfigValue struct {
	Key      string
	Type     ConfigType
	Raw      string
	Value    any
	Group    string
	Editable bool
}
