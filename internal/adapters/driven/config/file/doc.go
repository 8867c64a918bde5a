// Package file implements configuration ports on the local filesystem.
//
//   - ConfigStore: runtime settings in ~/.vepctl/config.toml, overridable
//     per key through VEPCTL_* environment variables
//   - AliasStore: jurisdiction alias files in TOML or YAML (~/.vepctl/fields)
package file
