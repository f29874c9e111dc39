package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kataras/cloudinary-source/pkg/node"
)

// Summary is the run information printed at the top of the report.
type Summary struct {
	CloudName       string
	Pages           int
	Transformations string
	Failure         string // empty when the run completed
}

// ToMarkdown renders an inventory of the sourced nodes: a per-format count
// followed by one table row per asset in registration order.
func ToMarkdown(nodes []node.Node, sum Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Cloudinary Media - %s\n\n", sum.CloudName))

	sb.WriteString(fmt.Sprintf("- Nodes: %d\n", len(nodes)))
	sb.WriteString(fmt.Sprintf("- Pages: %d\n", sum.Pages))
	if sum.Transformations != "" {
		sb.WriteString(fmt.Sprintf("- Transformation: `%s`\n", sum.Transformations))
	}
	if sum.Failure != "" {
		sb.WriteString(fmt.Sprintf("- **Incomplete**: %s\n", sum.Failure))
	}
	sb.WriteString("\n")

	if len(nodes) == 0 {
		sb.WriteString("No assets were sourced.\n")
		return sb.String()
	}

	// Formats
	formats := make(map[string]int)
	var total uint64
	for _, n := range nodes {
		formats[field(n, "format")]++
		total += uint64(size(n))
	}
	names := make([]string, 0, len(formats))
	for f := range formats {
		names = append(names, f)
	}
	sort.Strings(names)

	sb.WriteString("## Formats\n\n")
	sb.WriteString("| Format | Count |\n")
	sb.WriteString("|--------|-------|\n")
	for _, f := range names {
		label := f
		if label == "" {
			label = "(unknown)"
		}
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", label, formats[f]))
	}
	sb.WriteString(fmt.Sprintf("\nTotal size: %s\n\n", humanize.Bytes(total)))

	// Assets
	sb.WriteString("## Assets\n\n")
	sb.WriteString("| Public ID | Format | Size | Secure URL |\n")
	sb.WriteString("|-----------|--------|------|------------|\n")
	for _, n := range nodes {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeCell(n.PublicID()),
			escapeCell(field(n, "format")),
			humanize.Bytes(uint64(size(n))),
			escapeCell(field(n, "secure_url"))))
	}

	return sb.String()
}

func field(n node.Node, key string) string {
	s, _ := n.Fields[key].(string)
	return s
}

func size(n node.Node) int64 {
	switch v := n.Fields["bytes"].(type) {
	case interface{ Int64() (int64, error) }:
		b, _ := v.Int64()
		return b
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}
	return 0
}

// escapeCell keeps pipes in values from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
