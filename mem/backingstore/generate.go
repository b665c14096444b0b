package backingstore

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/sarchlab/vmsim/vm"
)

// Generate writes a backing store file that covers the whole virtual address
// space with pseudo-random bytes. The same seed always produces the same
// file.
func Generate(path string, seed int64) error {
	data := make([]byte, vm.NumPages*vm.PageSize)

	r := rand.New(rand.NewSource(seed))
	for i := range data {
		data[i] = byte(r.Intn(256))
	}

	err := os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("cannot write backing store: %w", err)
	}

	return nil
}
