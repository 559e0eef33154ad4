package catalog

import (
	"fmt"
	"slices"
)

type Entry struct {
	RowCount int64
}

// Catalog maps stream names to their row counts at discovery time, preserving the order streams were added in.
type Catalog struct {
	order   []string
	entries map[string]Entry
}

func New() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Add registers a stream, a second call for the same stream is an error.
func (c *Catalog) Add(stream string, rowCount int64) error {
	if _, isOk := c.entries[stream]; isOk {
		return fmt.Errorf("stream %q was already added to the catalog", stream)
	}

	c.order = append(c.order, stream)
	c.entries[stream] = Entry{RowCount: rowCount}
	return nil
}

func (c *Catalog) Get(stream string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, isOk := c.entries[stream]
	return entry, isOk
}

func (c *Catalog) Has(stream string) bool {
	_, isOk := c.Get(stream)
	return isOk
}

// Streams returns the stream names in catalog order.
func (c *Catalog) Streams() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.order)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}
