package config

// ConfigBackend abstracts config storage so tests can inject their own.
// The production backend is a JSON file in the XDG config directory.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
