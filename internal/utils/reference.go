package utils

import (
	"crypto/rand"
)

// refAlphabet excludes easily-confused characters (0/O, 1/I/l) so the
// reference can be read over the phone.
const refAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz"

// refLength is the number of random characters after the "PG-" prefix.
// 9 characters over a 54 symbol alphabet give well over 10^15
// combinations, which is plenty for a unique human-facing code.
const refLength = 9

// NewBookingRef generates a human-readable booking reference of the
// form "PG-XXXXXXXXX". References are immutable once assigned and the
// bookings table enforces uniqueness; the collision probability at
// this length makes retries unnecessary in practice.
func NewBookingRef() (string, error) {
	buf := make([]byte, refLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, refLength)
	for i, b := range buf {
		out[i] = refAlphabet[int(b)%len(refAlphabet)]
	}
	return "PG-" + string(out), nil
}
