package assets

// Registry lists embedded assets available at runtime.
// Update this when adding/removing curated assets.

type AssetInfo struct {
	Name    string // lookup key
	Family  string // jsonschema, handlebars
	Version string
	Path    string // path relative to the embedded root
}

var Registry = []AssetInfo{
	{
		Name:    "kernel-v0.1.0",
		Family:  "jsonschema",
		Version: "draft-07",
		Path:    "kernel/kernel.schema.json",
	},
	{
		Name:    "rgd-config-v1.0.0",
		Family:  "jsonschema",
		Version: "draft-07",
		Path:    "config/rgd-config.schema.json",
	},
	{
		Name:    "boot-summary",
		Family:  "handlebars",
		Version: "4",
		Path:    "boot/summary.hbs",
	},
}

// Lookup returns the registry entry for name.
func Lookup(name string) (AssetInfo, bool) {
	for _, a := range Registry {
		if a.Name == name {
			return a, true
		}
	}
	return AssetInfo{}, false
}
