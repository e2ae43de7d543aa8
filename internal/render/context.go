package render

import "fmt"

// Context is the mutable state of one render: caption counters, bookmark
// sequence and the headings collected for the table of contents. A Context
// is never shared between renders.
type Context struct {
	counters map[string]int
	bookmark int
	toc      []tocEntry
}

type tocEntry struct {
	level    int
	text     string
	bookmark string
}

func newContext() *Context {
	return &Context{counters: make(map[string]int, 3)}
}

// Next advances and returns the caption number for kind.
func (c *Context) Next(kind string) int {
	c.counters[kind]++
	return c.counters[kind]
}

// Count returns how many captions of kind were numbered so far.
func (c *Context) Count(kind string) int {
	return c.counters[kind]
}

func (c *Context) nextBookmark() (int, string) {
	c.bookmark++
	return c.bookmark, fmt.Sprintf("_Toc%08d", c.bookmark)
}
