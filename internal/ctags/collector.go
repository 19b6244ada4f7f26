package ctags

// Collector accumulates records in arrival order. It is not safe for
// concurrent use.
type Collector struct {
	records    []Record
	duplicates int
	sorted     bool
}

func (c *Collector) Add(r Record) {
	c.records = append(c.records, r)
	c.sorted = false
}

func (c *Collector) Len() int {
	return len(c.records)
}

// Records sorts and deduplicates the collected records and returns them.
func (c *Collector) Records() []Record {
	if !c.sorted {
		before := len(c.records)
		c.records = SortUnique(c.records)
		c.duplicates += before - len(c.records)
		c.sorted = true
	}
	return c.records
}

// Duplicates is the number of records dropped by Records so far.
func (c *Collector) Duplicates() int {
	return c.duplicates
}
