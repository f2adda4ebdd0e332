// Package hash defines the token hash used with the count-min sketch.
package hash

import "hash/fnv"

// Token returns the hash of a corpus token. The hash function used is
// FNV-32a; every writer and reader of token statistics must agree on it.
func Token(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
