package genotype

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// hashGenes computes the non-cryptographic 64-bit fingerprint of the byte
// image of a gene slice. Fixed-size allele kinds stream through
// encoding/binary; anything else falls back to the printed form.
func hashGenes[A comparable](genes []A) uint64 {
	d := xxhash.New()
	if err := binary.Write(d, binary.LittleEndian, genes); err != nil {
		d.Reset()
		fmt.Fprint(d, genes)
	}
	return d.Sum64()
}
