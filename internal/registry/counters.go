package registry

// Counter slot assignments. These are a stable external contract if ever
// exposed via a STATS command.
const (
	StatTotalConns = iota
	StatTotalUsers
	StatLocalUsers
	StatReggedUsers
	StatOperators
	StatChannels
	StatMaxUsers
)

// Counters holds the eight fixed statistics slots.
type Counters struct {
	slots [8]int32
}

// Inc increments counter i.
func (c *Counters) Inc(i int) {
	c.slots[i]++
}

// Dec decrements counter i.
func (c *Counters) Dec(i int) {
	c.slots[i]--
}

// Get reads counter i.
func (c *Counters) Get(i int) int32 {
	return c.slots[i]
}

// Set assigns counter i.
func (c *Counters) Set(i int, v int32) {
	c.slots[i] = v
}
