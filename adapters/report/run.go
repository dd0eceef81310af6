package report

import (
	"fmt"
	"io"
	"strings"

	"saga/app"
	"saga/internal/errors"
)

// RenderRunMarkdown writes a Markdown document covering every item of a
// validation run.
func RenderRunMarkdown(w io.Writer, run *app.RunReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Validation run %s\n\n", run.ID)
	fmt.Fprintf(&b, "Kind: %s. Source: %s. Created: %s.\n\n", run.Kind, run.Source, run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**%s**\n\n", run.Summary())

	md := NewMarkdownRenderer()
	for _, item := range run.Items {
		fmt.Fprintf(&b, "---\n\n## Block %d\n\n", item.Index)
		if item.Err != "" {
			fmt.Fprintf(&b, "Validation aborted: %s\n\n", item.Err)
			continue
		}
		var section strings.Builder
		if err := md.RenderUnivariate(&section, item.Result); err != nil {
			return err
		}
		// Drop the per-item top-level heading, the block heading replaces it.
		b.WriteString(strings.TrimPrefix(section.String(), "# Gaussian sampler validation\n"))
		fmt.Fprintf(&b, "\nCorpus fingerprint: `%s`\n\n", item.Fingerprint)
	}

	if run.Multivariate != nil {
		b.WriteString("---\n\n")
		var section strings.Builder
		if err := md.RenderMultivariate(&section, run.Multivariate); err != nil {
			return err
		}
		b.WriteString(section.String())
		if run.Fingerprint != "" {
			fmt.Fprintf(&b, "\nCorpus fingerprint: `%s`\n", run.Fingerprint)
		}
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing run report")
}

// RenderRunHTML writes the run report as a standalone HTML page.
func RenderRunHTML(w io.Writer, run *app.RunReport) error {
	var buf strings.Builder
	if err := RenderRunMarkdown(&buf, run); err != nil {
		return err
	}
	return writeHTML(w, buf.String())
}
