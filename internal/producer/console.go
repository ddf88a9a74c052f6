package producer

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/vdtran/werewolf-gm/internal/broker"
)

// Console produces decisions typed by a human at a terminal. It prints the
// latest request and reads one line per decision.
type Console struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewConsole creates a console producer over the given reader and writer.
func NewConsole(in io.Reader, out io.Writer) *Console {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024)
	return &Console{in: sc, out: out}
}

// Produce shows the last request to the operator and reads their answer.
func (c *Console) Produce(ctx context.Context, playerID string, messages []broker.ContextEntry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		fmt.Fprintf(c.out, "\n--- request for %s ---\n%s\n", playerID, last.Content)
	}
	fmt.Fprintf(c.out, "answer> ")
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", io.EOF
	}
	return c.in.Text(), nil
}
