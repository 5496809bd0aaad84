package audiobook

import (
	"fmt"
	"math"
)

// Chapter is one entry of the source chapter table. Number is 1-based and
// assigned by enumeration order.
type Chapter struct {
	Number int
	Start  float64
	End    float64
	Title  string
}

// Duration is End minus Start; it can be zero or negative for malformed tables.
func (c Chapter) Duration() float64 {
	return c.End - c.Start
}

// Valid reports whether the chapter has a positive duration.
func (c Chapter) Valid() bool {
	return c.End > c.Start && !math.IsNaN(c.Start) && !math.IsNaN(c.End)
}

// DefaultChapterTitle is used when the chapter table entry has no title.
func DefaultChapterTitle(number int) string {
	return fmt.Sprintf("Chapter %d", number)
}
