// Package console is the line-oriented player terminal: styled output for
// narration, rulings and notices, and blocking prompts for player input.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"

	"github.com/qui-ball/virtualGM/pkg/tools"
)

const (
	Title      = "VIRTUAL GM"
	UserPrompt = "You: "
)

var exitCommands = []string{"exit", "quit", "q"}

var fold = cases.Fold()

// IsExitCommand reports whether a line ends the session.
func IsExitCommand(line string) bool {
	s := fold.String(strings.TrimSpace(line))
	for _, c := range exitCommands {
		if s == c {
			return true
		}
	}
	return false
}

type styles struct {
	title     lipgloss.Style
	narration lipgloss.Style
	declare   lipgloss.Style
	notice    lipgloss.Style
	prompt    lipgloss.Style
	user      lipgloss.Style
	err       lipgloss.Style
	separator lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:     r.NewStyle().Foreground(lipgloss.Color("205")).Bold(true), // pink
		narration: r.NewStyle().Foreground(lipgloss.Color("86")),             // green
		declare:   r.NewStyle().Foreground(lipgloss.Color("212")).Bold(true), // purple
		notice:    r.NewStyle().Foreground(lipgloss.Color("214")),            // yellow
		prompt:    r.NewStyle().Foreground(lipgloss.Color("240")),            // dark grey
		user:      r.NewStyle().Foreground(lipgloss.Color("39")),             // teal
		err:       r.NewStyle().Foreground(lipgloss.Color("196")),            // red
		separator: r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Console implements tools.Player over a reader and a writer.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	width  int
	styles styles
	mu     sync.Mutex

	// Input is read by one goroutine so a blocked read can be abandoned
	// when the context ends.
	startReader sync.Once
	lines       chan lineResult
	readErr     error
}

type lineResult struct {
	line string
	err  error
}

var _ tools.Player = (*Console)(nil)

// New creates a console. Text is wrapped at width columns.
func New(in io.Reader, out io.Writer, width int) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		width:  width,
		styles: newStyles(lipgloss.NewRenderer(out)),
	}
}

func (c *Console) wrap(text string) string {
	if c.width <= 0 {
		return text
	}
	return wordwrap.String(text, c.width)
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out, s)
}

// Banner prints the session header.
func (c *Console) Banner(subtitle string) {
	c.println(c.styles.title.Render(Title))
	if subtitle != "" {
		c.println(c.wrap(subtitle))
	}
	c.Separator()
}

func (c *Console) Separator() {
	n := c.width
	if n <= 0 || n > 60 {
		n = 60
	}
	c.println(c.styles.separator.Render(strings.Repeat("─", n)))
}

// Narrate prints story text.
func (c *Console) Narrate(text string) {
	c.println(c.styles.narration.Render(c.wrap(strings.TrimSpace(text))) + "\n")
}

// Declare prints a ruling or an explicit GM statement.
func (c *Console) Declare(text string) {
	c.println(c.styles.declare.Render(c.wrap("» " + strings.TrimSpace(text))))
}

// Notify prints a mechanical notice such as a state change.
func (c *Console) Notify(text string) {
	c.println(c.styles.notice.Render(c.wrap("  " + strings.TrimSpace(text))))
}

// Error prints an error line.
func (c *Console) Error(text string) {
	c.println(c.styles.err.Render(c.wrap("Error: " + text)))
}

// Ask prints a prompt and blocks for one line of input.
func (c *Console) Ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	_, _ = fmt.Fprint(c.out, c.styles.prompt.Render(prompt))
	c.mu.Unlock()
	return c.readLine(ctx)
}

// ReadUtterance shows the top-level prompt until the player enters a
// non-blank line. quit is set for an exit command or end of input.
func (c *Console) ReadUtterance(ctx context.Context) (line string, quit bool, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", true, err
		}
		c.mu.Lock()
		_, _ = fmt.Fprint(c.out, c.styles.user.Render(UserPrompt))
		c.mu.Unlock()

		line, err := c.readLine(ctx)
		if err == io.EOF {
			return "", true, nil
		}
		if err != nil {
			return "", true, err
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case IsExitCommand(line):
			return "", true, nil
		default:
			return line, false, nil
		}
	}
}

// readLine returns one line without its terminator, or the context's
// error if it ends first. A final line without a newline is returned
// before io.EOF.
func (c *Console) readLine(ctx context.Context) (string, error) {
	c.startReader.Do(func() {
		c.lines = make(chan lineResult)
		go c.readLoop()
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-c.lines:
		if !ok {
			return "", c.readErr
		}
		return r.line, r.err
	}
}

// readLoop feeds lines to readLine until the input fails. The failure is
// delivered once and then kept in readErr.
func (c *Console) readLoop() {
	defer close(c.lines)
	for {
		line, err := c.in.ReadString('\n')
		if err != nil {
			if err == io.EOF && line != "" {
				c.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
			}
			c.readErr = err
			c.lines <- lineResult{err: err}
			return
		}
		c.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
	}
}
