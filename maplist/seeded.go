package maplist

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// seededRand returns a deterministic source for a string seed so two
// servers (or the same server across restarts) resolve identical map
// lists for the same match.
func seededRand(parts ...interface{}) *rand.Rand {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			fmt.Fprint(h, "-")
		}
		fmt.Fprint(h, p)
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func shuffled[T any](r *rand.Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
