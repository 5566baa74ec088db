package utils

import (
	"math/rand"
	"strconv"
	"strings"
)

func IfEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if len(a) == 0 {
		return b
	}
	return a
}

// RandomLocalPart builds a throwaway mailbox local part: two
// concatenated base-36 fragments, lowercase alphanumeric. Nothing is
// reserved or recorded; collisions just share a mailbox.
func RandomLocalPart() string {
	return frag36() + frag36()
}

func frag36() string {
	return strconv.FormatUint(uint64(rand.Uint32())|1<<32, 36)
}
