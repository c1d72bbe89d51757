package assets

import "io/fs"

// Names of the embedded schemas.
const (
	KernelSchema = "kernel-v0.1.0"
	ConfigSchema = "rgd-config-v1.0.0"
)

// GetSchema returns the embedded schema bytes registered under name.
func GetSchema(name string) ([]byte, bool) {
	info, ok := Lookup(name)
	if !ok || info.Family != "jsonschema" {
		return nil, false
	}
	data, err := fs.ReadFile(GetSchemasFS(), info.Path)
	return data, err == nil
}
