// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigBackend: the Config record as a JSON document, replaced atomically
//   - Settings: TOML application settings loaded through viper
package file
