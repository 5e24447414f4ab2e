package engine

import (
	"fmt"
	"strconv"
)

// Engine option names.
const (
	OptionThreads     = "Threads"
	OptionHash        = "Hash"
	OptionMultiPV     = "MultiPV"
	OptionAnalyseMode = "UCI_AnalyseMode"
	OptionContempt    = "Analysis Contempt"
	OptionChess960    = "UCI_Chess960"
)

// optionCache remembers the last value sent for each option so that an
// unchanged value is never re-sent; some engines reset state on setoption.
type optionCache struct {
	values map[string]string
}

func newOptionCache() *optionCache {
	return &optionCache{values: map[string]string{
		OptionThreads: strconv.Itoa(DefaultThreads),
		OptionHash:    strconv.Itoa(DefaultHashSize),
		OptionMultiPV: strconv.Itoa(DefaultMultiPV),
	}}
}

// diff records value and returns the setoption command to send, or "" if
// the engine already has it.
func (c *optionCache) diff(name string, value interface{}) string {
	v := fmt.Sprint(value)
	if cur, ok := c.values[name]; ok && cur == v {
		return ""
	}
	c.values[name] = v
	return fmt.Sprintf("setoption name %s value %s", name, v)
}

// get returns the cached value.
func (c *optionCache) get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}
