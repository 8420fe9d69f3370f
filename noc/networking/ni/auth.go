package ni

import "log"

// MultiAuthTagBytes returns the size of a multicast authentication tag. The
// size only depends on the security strength t and the number of recipients
// n.
func MultiAuthTagBytes(t, n int) int {
	switch {
	case t == 10 && n <= 4:
		return 26
	case t == 10 && n <= 8:
		return 40
	}

	log.Panicf("no multicast tag size for t=%d and %d recipients", t, n)

	return 0
}

// SipHashTagBytes is the size of a point-to-point authentication tag.
const SipHashTagBytes = 8

// SipHashCycles estimates the cycles needed to compute a SipHash tag over a
// message of msgLen bytes.
func SipHashCycles(msgLen int) int {
	return int(2.5 * float64(msgLen))
}

// multicastSecurityStrength is the security strength of multicast tags.
const multicastSecurityStrength = 10

func tagBytes(numDest int, multiAuth bool) int {
	if multiAuth {
		return MultiAuthTagBytes(multicastSecurityStrength, numDest)
	}

	return SipHashTagBytes
}
