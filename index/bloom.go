package index

import (
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/quickset/storage"
)

// DefaultFalsePositiveRate is the Bloom false-positive rate used when
// the caller does not supply one.
const DefaultFalsePositiveRate = 0.01

// bloomSalt seeds the second hash for double hashing.
var bloomSalt = []byte{0x5b, 0xd1, 0xe9, 0x95}

// BloomIndex is a probabilistic membership filter used as a gate in
// front of exact lookups: a negative answer is authoritative, a
// positive one may be a false positive.
//
// Sizing follows the standard derivation from target capacity n and
// false-positive rate p:
//
//	m = ⌈-n·ln p / (ln 2)²⌉ bits, k = ⌈(m/n)·ln 2⌉ hashes
//
// The filter never removes: deleted values keep their bits until the
// index is rebuilt, which only widens the false-positive rate and
// never produces a false negative for live values.
type BloomIndex struct {
	bits    []uint64
	numBits uint64
	k       uint32
	count   uint64
}

// NewBloomIndex creates a filter sized for n expected values at
// false-positive rate p. Out-of-range p falls back to
// DefaultFalsePositiveRate.
func NewBloomIndex(n int, p float64) *BloomIndex {
	if n <= 0 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = DefaultFalsePositiveRate
	}

	m := math.Ceil(float64(-n) * math.Log(p) / (math.Ln2 * math.Ln2))
	numBits := (uint64(m) + 63) / 64 * 64
	if numBits < 64 {
		numBits = 64
	}

	k := uint32(math.Ceil(m / float64(n) * math.Ln2))
	if k < 1 {
		k = 1
	}
	if k > 16 {
		k = 16
	}

	return &BloomIndex{
		bits:    make([]uint64, numBits/64),
		numBits: numBits,
		k:       k,
	}
}

// Add inserts a value. After Add(v), MayContain(v) always returns
// true.
func (ix *BloomIndex) Add(v storage.Value) {
	h1, h2 := bloomHash(v.Key())
	for i := uint32(0); i < ix.k; i++ {
		bit := (h1 + uint64(i)*h2) % ix.numBits
		ix.bits[bit/64] |= 1 << (bit % 64)
	}
	ix.count++
}

// MayContain checks membership. false is definitive; true means the
// value must be confirmed against the exact index behind the gate.
func (ix *BloomIndex) MayContain(v storage.Value) bool {
	h1, h2 := bloomHash(v.Key())
	for i := uint32(0); i < ix.k; i++ {
		bit := (h1 + uint64(i)*h2) % ix.numBits
		if ix.bits[bit/64]&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of values added.
func (ix *BloomIndex) Count() uint64 { return ix.count }

// SizeBytes returns the memory footprint of the bit array.
func (ix *BloomIndex) SizeBytes() int { return len(ix.bits) * 8 }

// EstimatedFalsePositiveRate returns the rate implied by the current
// fill: (1 - e^(-k·n/m))^k.
func (ix *BloomIndex) EstimatedFalsePositiveRate() float64 {
	if ix.count == 0 {
		return 0
	}
	kn := float64(ix.k) * float64(ix.count)
	return math.Pow(1-math.Exp(-kn/float64(ix.numBits)), float64(ix.k))
}

// bloomHash derives two independent 64-bit hashes for double hashing:
// position i is h1 + i·h2 (mod m). h2 is forced odd; since m is a
// multiple of 64, h2 mod m is never zero and consecutive probes always
// land on different bits.
func bloomHash(key string) (h1, h2 uint64) {
	h1 = xxhash.Sum64String(key)

	d := xxhash.New()
	_, _ = d.Write(bloomSalt)
	_, _ = d.WriteString(key)
	h2 = d.Sum64() | 1

	return h1, h2
}
