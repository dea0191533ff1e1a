//go:build brewdebug

package invariant

const debug = true
