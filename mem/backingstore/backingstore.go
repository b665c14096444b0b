// Package backingstore provides access to the file that holds the content of
// the whole virtual address space.
package backingstore

import (
	"fmt"
	"os"

	"github.com/sarchlab/vmsim/vm"
)

// A Comp reads pages from the backing store file.
//
// The file stores the virtual address space page by page. Page p occupies the
// 256 bytes starting at offset p*256.
type Comp struct {
	name string
	file *os.File
}

// Open creates a Comp that reads from the file at the given path.
func Open(path string) (*Comp, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open backing store: %w", err)
	}

	c := &Comp{
		name: "BackingStore",
		file: file,
	}

	return c, nil
}

// Name returns the name of the backing store.
func (c *Comp) Name() string {
	return c.name
}

// ReadPage returns the content of one page.
func (c *Comp) ReadPage(page vm.Page) ([]byte, error) {
	data := make([]byte, vm.PageSize)
	offset := int64(page) * vm.PageSize

	_, err := c.file.ReadAt(data, offset)
	if err != nil {
		return nil, fmt.Errorf(
			"cannot read page %d from backing store: %w", page, err)
	}

	return data, nil
}

// Close releases the backing store file.
func (c *Comp) Close() error {
	return c.file.Close()
}
