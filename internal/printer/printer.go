// Package printer writes styled, human readable command output.
package printer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hay-kot/proofer/internal/core/styles"
)

type ctxKey struct{}

// Printer prints status lines. Safe for concurrent use.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	buf *bytes.Buffer
}

// New returns a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// NewContext stores p in ctx.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// Defer buffers output until Flush. Used while a full screen UI owns the
// terminal.
func (p *Printer) Defer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf == nil {
		p.buf = &bytes.Buffer{}
	}
}

// Flush writes buffered output and stops buffering.
func (p *Printer) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.buf == nil {
		return nil
	}
	buf := p.buf
	p.buf = nil

	if buf.Len() == 0 {
		return nil
	}
	_, err := buf.WriteTo(p.out)
	return err
}

func (p *Printer) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var w io.Writer = p.out
	if p.buf != nil {
		w = p.buf
	}
	_, _ = fmt.Fprintln(w, s)
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

// Success prints a success title followed by a muted detail.
func (p *Printer) Success(title, detail string) {
	line := styles.SuccessStyle.Render("✔ " + title)
	if detail != "" {
		line += " " + styles.MutedStyle.Render(detail)
	}
	p.println(line)
}

// Successf prints a formatted success line.
func (p *Printer) Successf(format string, args ...any) {
	p.println(styles.SuccessStyle.Render("✔ " + fmt.Sprintf(format, args...)))
}

// Infof prints a formatted informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.println(styles.CommandHeaderStyle.Render("• ") + fmt.Sprintf(format, args...))
}

// Warnf prints a formatted warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.println(styles.WarningStyle.Render("! " + fmt.Sprintf(format, args...)))
}

// Errorf prints a formatted error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.println(styles.ErrorStyle.Render("✘ " + fmt.Sprintf(format, args...)))
}
