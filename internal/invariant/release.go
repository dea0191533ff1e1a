//go:build !brewdebug

package invariant

const debug = false
