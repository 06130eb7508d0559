package machine

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"

	"github.com/bad-mango-solutions/pocket2e/emuerr"
	"github.com/bad-mango-solutions/pocket2e/logger"
)

// LoadedROM is the result of loading and verifying one rom-image entry:
// its bytes (the declared size, zero-filled on a fallback) and whether
// verification failed and was papered over rather than aborting the build.
type LoadedROM struct {
	Name          string
	Data          []byte
	FellBack      bool
	FallbackCause string
}

// LoadROM resolves a ROM image's source, verifies its declared hash if
// any, and applies the stop/fallback policy on mismatch (spec.md §6.5).
// A "stop" policy mismatch, or any resolution failure on a required image,
// returns a ResourceError; the caller (the builder) must treat that as
// fatal and abort construction atomically.
func LoadROM(spec ROMImageSpec, resolver *Resolver) (*LoadedROM, error) {
	data, err := resolver.Resolve(spec.Source)
	if err != nil {
		if !spec.Required {
			return &LoadedROM{Name: spec.Name, Data: make([]byte, spec.Size), FellBack: true, FallbackCause: err.Error()}, nil
		}
		return nil, err
	}

	if spec.Hash.SHA256 == "" && spec.Hash.MD5 == "" {
		return &LoadedROM{Name: spec.Name, Data: data}, nil
	}

	ok, computed := verifyHash(data, spec.Hash)
	if ok {
		return &LoadedROM{Name: spec.Name, Data: data}, nil
	}

	cause := "hash mismatch for rom image " + spec.Name + ": computed " + computed
	switch spec.OnVerificationFail {
	case "stop":
		return nil, emuerr.Resourcef("", "%s", cause)
	default: // "fallback", or unset defaults to fallback per the loader's return-a-tagged-result design
		logger.Logf("romloader", "%s; substituting zero-filled %d-byte buffer", cause, spec.Size)
		return &LoadedROM{Name: spec.Name, Data: make([]byte, spec.Size), FellBack: true, FallbackCause: cause}, nil
	}
}

// verifyHash checks data against whichever of SHA-256/MD5 the spec
// declares, preferring SHA-256. It also returns the computed digest (of
// whichever algorithm was checked) for use in a mismatch message.
func verifyHash(data []byte, h ROMHashSpec) (bool, string) {
	if h.SHA256 != "" {
		sum := sha256.Sum256(data)
		computed := hex.EncodeToString(sum[:])
		return computed == h.SHA256, computed
	}
	sum := md5.Sum(data)
	computed := hex.EncodeToString(sum[:])
	return computed == h.MD5, computed
}
