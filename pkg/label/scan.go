package label

import (
	"bufio"
	"context"
	"io"
)

// Wikidata records can be large; allow lines of up to 64 MiB.
const maxLineSize = 64 << 20

// ctxCheckEvery is the number of lines between cancellation checks.
const ctxCheckEvery = 1 << 16

// scanLines calls fn for every line of r without its trailing newline.
func scanLines(ctx context.Context, r io.Reader, fn func(lineNo int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(lineNo, sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}
