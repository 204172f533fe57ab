package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// symbolList prints a bold titled list of symbols, or nothing if there are none.
func symbolList(w io.Writer, title string, symbols []string) {
	ConditionalBlock(w, func(w io.Writer) bool {
		if len(symbols) == 0 {
			return false
		}
		fmt.Fprintf(w, "\n**%s** (%d): %s\n", title, len(symbols), strings.Join(symbols, ", "))
		return true
	})
}
