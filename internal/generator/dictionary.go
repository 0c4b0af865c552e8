package generator

import "math"

// IntDictionary biases integer generation toward small values,
// power-of-two neighborhoods, and signed 8/16/32-bit boundary values that
// tend to trip off-by-one and overflow bugs in the functions under test.
// Exported so the mutator package can draw from the same table when
// replacing an Integer argument outright.
var IntDictionary = []int32{
	-1, 0, 1, 2, 3, 4, 7, 8, 9, 15, 16, 17, 31, 32, 33, 63, 64, 65,
	127, 128, 129, 255, 256, 257, 511, 512, 513, 1023, 1024, 1025,
	4095, 4096, 4097, 32767, 32768, 32769, 65535, 65536, 65537,
	math.MinInt8, math.MinInt16, math.MinInt32, math.MaxInt32,
}

// FloatDictionary biases float generation toward boundary doubles, and is
// also reused by the mutator's float value-mutation menu.
var FloatDictionary = []float64{
	0.0, math.Copysign(0, -1), 1.0, -1.0,
	math.Nextafter(1, 2) - 1, // machine epsilon
	math.Inf(1), math.Inf(-1), math.NaN(),
}

// StringAlphabet is the fixed printable + whitespace alphabet generated
// string bytes are drawn from, also reused by the mutator's string
// value-mutation menu.
const StringAlphabet = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"~!@#$%^&*()-=_+" +
	"`[]\\{}|;':\",./<>?" +
	" \n\t\r"
