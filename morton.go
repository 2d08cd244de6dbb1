package simpleknn

// mortonBits is the quantization depth per axis. Three axes of 21 bits fill
// 63 bits of the key.
const mortonBits = 21

const mortonMax = 1<<mortonBits - 1

// quantize maps v from [lo, lo+extent] onto [0, mortonMax].
// A degenerate axis (extent 0) maps everything to 0.
func quantize(v, lo, extent float64) uint64 {
	if extent <= 0 {
		return 0
	}
	t := (v - lo) / extent
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return mortonMax
	}
	return uint64(t * mortonMax)
}

// spreadBits inserts two zero bits between each of the low 21 bits of v.
func spreadBits(v uint64) uint64 {
	v &= mortonMax
	v = (v | v<<32) & 0x001f00000000ffff
	v = (v | v<<16) & 0x001f0000ff0000ff
	v = (v | v<<8) & 0x100f00f00f00f00f
	v = (v | v<<4) & 0x10c30c30c30c30c3
	v = (v | v<<2) & 0x1249249249249249
	return v
}

// mortonEncode interleaves three 21-bit cell coordinates into a Z-order key:
// bit 3i holds bit i of x, bit 3i+1 of y, bit 3i+2 of z.
func mortonEncode(x, y, z uint64) uint64 {
	return spreadBits(x) | spreadBits(y)<<1 | spreadBits(z)<<2
}

// mortonKey quantizes p[0:3] into box and returns its Z-order key.
func mortonKey(p []float64, box BoundingBox, extent [3]float64) uint64 {
	return mortonEncode(
		quantize(p[0], box.Min[0], extent[0]),
		quantize(p[1], box.Min[1], extent[1]),
		quantize(p[2], box.Min[2], extent[2]),
	)
}
