// Package pathutils resolves user-supplied dataset paths into absolute, cleaned locations.
package pathutils
