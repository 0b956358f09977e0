// Package source provides lint.AssetSource implementations that enumerate image
// datasets lazily: Directory walks a dataset root on disk and Manifest reads an
// explicit asset list from a YAML or JSON file.
package source
