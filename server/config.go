package server

import (
	"reflect"
	"time"
)

// Config controls the listener and per-connection defaults. Zero-valued
// fields in an options struct passed to NewConfig are left at their
// default, the same merge-over-defaults shape the rest of this codebase
// uses for configuration.
type Config struct {
	Network string // "tcp", "tcp4", "tcp6"
	Address string // host:port to bind

	// ReadDeadline, if non-zero, is applied to every accepted connection
	// via conn.SetDeadline before the first byte is read. Per the
	// concurrency model, a deadline firing mid-read is a fatal I/O error
	// for that connection only.
	ReadDeadline time.Duration
}

// NewConfig returns the default Config, merged with options if non-nil.
func NewConfig(options *Config) Config {
	defaultConfig := Config{
		Network: "tcp",
		Address: ":8080",
	}
	if options == nil {
		return defaultConfig
	}
	return defaultConfig.merge(*options)
}

func (c Config) merge(o Config) Config {
	return mergeConfigs(c, o)
}

// mergeConfigs overwrites each field of a with the corresponding field of
// b wherever b's field is non-zero, via reflection over the two structs.
func mergeConfigs(a, b Config) Config {
	va := reflect.ValueOf(&a).Elem()
	vb := reflect.ValueOf(&b).Elem()

	for i := 0; i < va.NumField(); i++ {
		vaField := va.Field(i)
		vbField := vb.Field(i)

		if vbField.Interface() != reflect.Zero(vbField.Type()).Interface() {
			vaField.Set(vbField)
		}
	}

	return a
}
