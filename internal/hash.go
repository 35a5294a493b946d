package internal

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// FastHash is a non-cryptographic hash used for cache validators. Do not use
// it for anything that needs collision resistance against an attacker.
func FastHash(text string) string {
	h := xxhash.Sum64String(text)
	return strconv.FormatUint(h, 16)
}

// FastHashBytes is FastHash for byte slices.
func FastHashBytes(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
