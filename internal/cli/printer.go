package cli

import (
	"io"

	"github.com/fatih/color"

	"violet-client/internal/model"
)

type printer struct {
	out     io.Writer
	success *color.Color
	failure *color.Color
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:     out,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed, color.Bold),
	}
}

func (p *printer) print(n model.Notification) {
	if n.Severity == model.SeverityError {
		p.failure.Fprintf(p.out, "✗ %s\n", n.Message)
		return
	}
	p.success.Fprintf(p.out, "✓ %s\n", n.Message)
}
