package app

import "github.com/nhle/mailclient/internal/keys"

// KeyMap is re-exported from the keys package so callers wiring the
// program only need the app package.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
