// Command caf-mutator is the AFL custom_mutator shared object:
// built with `go build -buildmode=c-shared`, it exports custom_init,
// custom_fuzz, pre_save_handler, and the trim stubs directly to AFL's
// forkserver.
//
// Built as an ordinary executable instead, it runs in debug passthrough
// mode: it reads a hex-encoded test case from stdin, feeds it through
// custom_fuzz or pre_save_handler, and writes the hex-encoded result to
// stdout, so the engine can be exercised without a real AFL harness.
package main

/*
#include <stdint.h>
#include <stddef.h>
*/
import "C"

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unsafe"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/caf/internal/config"
	"github.com/calvinalkan/caf/internal/corpus"
	"github.com/calvinalkan/caf/internal/engine"
	"github.com/calvinalkan/caf/pkg/caflog"
)

var (
	current *engine.State
	log     caflog.Logger
)

//export custom_init
func custom_init(_ unsafe.Pointer, seed C.uint32_t) {
	log = caflog.Stderr(uint32(seed))

	cfg, err := config.Load(os.Environ(), config.Overrides{})
	if err != nil {
		log.Fatal(err, "custom_init: load config")
	}

	s, err := engine.Init(uint32(seed), cfg.Opts)
	if err != nil {
		log.Fatal(err, "custom_init: init engine")
	}
	current = s
}

//export custom_fuzz
func custom_fuzz(
	_ unsafe.Pointer,
	bufInout **C.uint8_t,
	bufLen C.size_t,
	addBuf *C.uint8_t,
	addBufLen C.size_t,
	maxSize C.size_t,
) C.size_t {
	primary := C.GoBytes(unsafe.Pointer(*bufInout), C.int(bufLen))

	var splice []byte
	if addBuf != nil && addBufLen > 0 {
		splice = C.GoBytes(unsafe.Pointer(addBuf), C.int(addBufLen))
	}

	out, err := current.Fuzz(primary, splice, int(maxSize))
	if err != nil {
		log.Fatal(err, "custom_fuzz: mutate")
	}
	if len(out) == 0 {
		*bufInout = nil
		return 0
	}
	*bufInout = (*C.uint8_t)(unsafe.Pointer(&out[0]))
	return C.size_t(len(out))
}

//export pre_save_handler
func pre_save_handler(data *C.uint8_t, size C.size_t, newData **C.uint8_t) C.size_t {
	in := C.GoBytes(unsafe.Pointer(data), C.int(size))

	out, err := current.PreSave(in)
	if err != nil {
		log.Fatal(err, "pre_save_handler: synthesize")
	}
	if len(out) == 0 {
		*newData = nil
		return 0
	}
	*newData = (*C.uint8_t)(unsafe.Pointer(&out[0]))
	return C.size_t(len(out))
}

//export custom_init_trim
func custom_init_trim(_ unsafe.Pointer, buf *C.uint8_t, bufLen C.size_t) C.uint32_t {
	_ = C.GoBytes(unsafe.Pointer(buf), C.int(bufLen))
	return C.uint32_t(current.InitTrim(nil))
}

//export custom_trim
func custom_trim(_ unsafe.Pointer, outLen *C.size_t) *C.uint8_t {
	*outLen = 0
	return nil
}

//export custom_post_trim
func custom_post_trim(_ unsafe.Pointer, _ C.uint8_t) {}

func main() {
	var (
		flagMode = flag.String("mode", "fuzz", "debug mode: fuzz|presave")
		flagSeed = flag.Uint32("seed", 1, "RNG seed")
		flagAdd  = flag.String("splice-hex", "", "hex-encoded splice candidate for fuzz mode")
		flagDump = flag.String("dump", "", "also write the raw result to this path (atomically)")
	)
	flag.Parse()

	cfg, err := config.Load(os.Environ(), config.Overrides{Seed: flagSeed})
	if err != nil {
		caflog.Stderr(0).Fatal(err, "load config")
	}
	log = caflog.Stderr(cfg.Seed)

	st, err := engine.InitFromPath(cfg.StorePath, cfg.Seed, cfg.Opts)
	if err != nil {
		log.Fatal(err, "init engine")
	}

	in, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatal(err, "read stdin")
	}

	primary, err := hex.DecodeString(trimNewline(in))
	if err != nil {
		log.Fatal(err, "decode hex input")
	}

	var out []byte
	switch *flagMode {
	case "fuzz":
		var splice []byte
		if *flagAdd != "" {
			splice, err = hex.DecodeString(*flagAdd)
			if err != nil {
				log.Fatal(err, "decode splice-hex")
			}
		}
		out, err = st.Fuzz(primary, splice, 0)
	case "presave":
		out, err = st.PreSave(primary)
	default:
		log.Fatal(fmt.Errorf("unknown mode %q", *flagMode), "parse mode flag")
	}
	if err != nil {
		log.Fatal(err, "run "+*flagMode)
	}

	if *flagDump != "" {
		var dumpErr error
		if *flagMode == "presave" {
			dumpErr = corpus.DumpScript(*flagDump, string(out))
		} else {
			dumpErr = corpus.DumpBinary(*flagDump, out)
		}
		if dumpErr != nil {
			log.Fatal(dumpErr, "dump result")
		}
	}

	fmt.Println(hex.EncodeToString(out))
}

func trimNewline(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return string(b)
}
