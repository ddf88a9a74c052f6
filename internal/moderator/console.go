package moderator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vdtran/werewolf-gm/internal/broker"
	"github.com/vdtran/werewolf-gm/internal/game"
)

// Console is the interactive game-master seat. Every decision in the game
// passes through Review; the operator answers with a one-letter disposition
// or an inspection command.
type Console struct {
	in    *bufio.Scanner
	out   io.Writer
	tools *Tools
}

// NewConsole creates a console moderator bound to the game state.
func NewConsole(in io.Reader, out io.Writer, s *game.State) *Console {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024)
	return &Console{in: sc, out: out, tools: &Tools{State: s}}
}

// Review renders the request and reads dispositions until a terminal one.
func (c *Console) Review(ctx context.Context, req broker.ReviewRequest) (broker.ReviewResponse, error) {
	c.render(req)
	for {
		if err := ctx.Err(); err != nil {
			return broker.ReviewResponse{}, err
		}
		fmt.Fprintf(c.out, "[y]accept [r]etry [m]anual [a]ccept-invalid [s]kip, or i/h/l/v/k to inspect> ")
		line, err := c.readLine()
		if err != nil {
			return broker.ReviewResponse{}, err
		}
		cmd, arg := splitCommand(line)
		switch cmd {
		case "y":
			return broker.ReviewResponse{Disposition: broker.DispositionAccept}, nil
		case "r":
			return broker.ReviewResponse{Disposition: broker.DispositionRetry}, nil
		case "a":
			return broker.ReviewResponse{Disposition: broker.DispositionAcceptInvalid}, nil
		case "s":
			return broker.ReviewResponse{Disposition: broker.DispositionSkip}, nil
		case "m":
			fmt.Fprintf(c.out, "manual value> ")
			manual, err := c.readLine()
			if err != nil {
				return broker.ReviewResponse{}, err
			}
			return broker.ReviewResponse{Disposition: broker.DispositionManual, ManualContent: manual}, nil
		case "i":
			c.tools.WriteStatuses(c.out)
		case "h":
			if arg == "" {
				arg = req.PlayerID
			}
			c.tools.WriteHistory(c.out, arg)
		case "l":
			c.tools.WriteLogTail(c.out, 20)
		case "v":
			c.tools.WriteVotes(c.out)
		case "k":
			if err := c.tools.KillPlayer(arg); err != nil {
				fmt.Fprintf(c.out, "override failed: %v\n", err)
			}
		default:
			fmt.Fprintf(c.out, "unknown command %q\n", line)
		}
	}
}

// Continue asks the operator whether the next round should start.
func (c *Console) Continue(ctx context.Context, day int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(c.out, "\nDay %d is over. Continue to the next round? [Y/n]> ", day)
	line, err := c.readLine()
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line != "n" && line != "no", nil
}

func (c *Console) render(req broker.ReviewRequest) {
	fmt.Fprintf(c.out, "\n=== review: %s / %s ===\n", req.PlayerLabel, req.Action)
	if req.Escalation != broker.EscalationNone {
		fmt.Fprintf(c.out, "ESCALATION (%s): %s\n", req.Escalation, req.FailureDetail)
		return
	}
	fmt.Fprintf(c.out, "response: %s\n", req.Raw)
	if req.Valid {
		fmt.Fprintf(c.out, "valid -> %s", req.Parsed.Kind)
		if req.Parsed.TargetID != "" {
			fmt.Fprintf(c.out, " (%s)", req.Parsed.TargetID)
		}
		fmt.Fprintln(c.out)
		return
	}
	fmt.Fprintf(c.out, "INVALID: %s\n", req.Err.Reason)
	if len(req.Err.ValidChoices) > 0 {
		fmt.Fprintf(c.out, "valid choices: %s\n", strings.Join(req.Err.ValidChoices, ", "))
	}
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read command: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func splitCommand(line string) (cmd, arg string) {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}
