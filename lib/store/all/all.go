// Package all is a meta-package that imports all store implementations so
// they register themselves with the store registry.
package all

import (
	_ "github.com/tetralog/opengraph/lib/store/bbolt"
	_ "github.com/tetralog/opengraph/lib/store/memory"
	_ "github.com/tetralog/opengraph/lib/store/valkey"
)
