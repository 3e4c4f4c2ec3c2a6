package control

import "strconv"

// Handle is a non-owning reference to a Controller in a Registry. It encodes
// a 1-based slot index in the low 32 bits and the slot generation in the high
// 32 bits; destroying a controller bumps the generation so old handles stop
// resolving.
type Handle uint64

// NoController is the empty handle.
const NoController Handle = 0

const handleIndexBits = 32

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<handleIndexBits | uint64(index))
}

func (h Handle) index() uint32 {
	return uint32(h)
}

func (h Handle) generation() uint32 {
	return uint32(uint64(h) >> handleIndexBits)
}

// Valid reports whether h is non-empty. A valid handle may still be stale.
func (h Handle) Valid() bool {
	return h.index() > 0
}

func (h Handle) String() string {
	if !h.Valid() {
		return "none"
	}
	return strconv.FormatUint(uint64(h.index()), 10) + "v" + strconv.FormatUint(uint64(h.generation()), 10)
}
