package kanim

import "strconv"

// Hash is the canonical 32-bit identifier of a bank, symbol or layer.
type Hash uint32

// SmallHash hashes s case-insensitively. ASCII letters are folded to lower
// case before mixing; other bytes are mixed as-is.
func SmallHash(s string) Hash {
	var h uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		h = uint32(c) + (h << 6) + (h << 16) - h
	}
	return Hash(h)
}

// String formats the hash as an unsigned decimal, the form used inside cache keys.
func (h Hash) String() string {
	return strconv.FormatUint(uint64(h), 10)
}
