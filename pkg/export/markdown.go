package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
	"\n", " ",
)

// WriteMarkdown renders the rows as an indented bullet outline. Highlighted
// rows are bold, section headers italic, and the remaining cells follow the
// label.
func WriteMarkdown(w io.Writer, seq *hierarchy.Sequence, opts Options) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n\n", markdownEscaper.Replace(opts.title()))
	if opts.Subtitle != "" {
		fmt.Fprintf(bw, "%s\n\n", markdownEscaper.Replace(opts.Subtitle))
	}
	var meta []string
	if opts.Cutoff != "" {
		meta = append(meta, "changes since "+opts.Cutoff)
	}
	meta = append(meta, fmt.Sprintf("%d highlighted", seq.HighlightedCount()))
	meta = append(meta, "exported "+opts.exportedAt().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(bw, "*%s*\n\n", strings.Join(meta, " · "))

	indices := selectRows(seq, opts.OnlyVisible)
	if len(indices) == 0 {
		bw.WriteString("_No rows to show._\n")
		return bw.Flush()
	}

	for _, i := range indices {
		bw.WriteString(markdownLine(seq, i))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func markdownLine(seq *hierarchy.Sequence, i int) string {
	row := seq.Row(i)
	label := markdownEscaper.Replace(row.Label)
	switch {
	case row.SectionHeader:
		label = "_" + label + "_"
	case seq.IsHighlighted(i):
		label = "**" + label + "**"
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", seq.Depth(i)))
	sb.WriteString("- ")
	if seq.HasChildren(i) && row.Collapsed {
		sb.WriteString("▸ ")
	}
	sb.WriteString(label)
	for c := 1; c < len(row.Cells); c++ {
		text := row.CellText(c)
		if text == "" {
			continue
		}
		sb.WriteString(" · ")
		sb.WriteString(markdownEscaper.Replace(text))
	}
	return sb.String()
}
