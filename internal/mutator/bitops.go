package mutator

import "github.com/calvinalkan/caf/internal/rng"

// flipBits XORs width (1, 2, or 4) adjacent bits of x's 32-bit
// representation at a uniformly chosen bit offset.
func flipBits(x int32, width int, r *rng.Source) int32 {
	offset := r.IntRange(0, 32-width)
	mask := uint32(1<<uint(width)-1) << uint(offset)
	return int32(uint32(x) ^ mask) //nolint:gosec
}

// flipBytes XORs width (1, 2, or 4) adjacent bytes of x's 32-bit
// representation at a uniformly chosen byte offset.
func flipBytes(x int32, width int, r *rng.Source) int32 {
	offset := r.IntRange(0, 4-width)
	mask := uint32(0)
	for i := 0; i < width; i++ {
		mask |= 0xff << uint(8*(offset+i))
	}
	return int32(uint32(x) ^ mask) //nolint:gosec
}

// arith treats width adjacent bytes at a uniformly chosen byte offset as a
// signed little-endian integer and adds a delta drawn uniformly from
// [-35, 35]. Overflow wraps within the window; bytes outside it
// are untouched.
func arith(x int32, width int, r *rng.Source) int32 {
	offset := r.IntRange(0, 4-width)
	delta := r.IntRange(-35, 35)

	u := uint32(x) //nolint:gosec
	shift := uint(8 * offset)
	switch width {
	case 1:
		w := int8(u>>shift) + int8(delta)              //nolint:gosec
		u = u&^(0xff<<shift) | uint32(uint8(w))<<shift //nolint:gosec
	case 2:
		w := int16(u>>shift) + int16(delta)               //nolint:gosec
		u = u&^(0xffff<<shift) | uint32(uint16(w))<<shift //nolint:gosec
	default: // 4
		u += uint32(int32(delta)) //nolint:gosec
	}
	return int32(u) //nolint:gosec
}
