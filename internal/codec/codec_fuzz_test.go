package codec_test

import (
	"testing"

	"github.com/calvinalkan/caf/internal/codec"
	"github.com/calvinalkan/caf/internal/pool"
)

// FuzzDecodeNeverPanics feeds arbitrary byte slices through Decode. The
// codec must reject malformed input with an error and never panic,
// regardless of how the buffer is truncated or corrupted.
func FuzzDecodeNeverPanics(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{1, 2})
	f.Add([]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF})
	f.Add([]byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, buf []byte) {
		p := pool.New()
		tc, err := codec.Decode(buf, p)
		if err != nil {
			return
		}
		// A successfully decoded test case must re-encode to something
		// Decode accepts again (encode/decode agree on the wire shape).
		again := codec.Encode(tc)
		if _, err := codec.Decode(again, pool.New()); err != nil {
			t.Fatalf("re-decoding a freshly encoded test case failed: %v", err)
		}
	})
}
