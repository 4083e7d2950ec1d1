package report

import "github.com/honai-puma/honai-puma/internal/territory"

// RowKind tags the two row variants in the assembled sequence.
type RowKind string

// Row variants. Section headers are rendering dividers with no data;
// consumers branch on Kind instead of sniffing uppercase names.
const (
	KindData          RowKind = "data"
	KindSectionHeader RowKind = "section_header"
)

// Row is one entry of the assembled report: a territory data row or a
// section-header divider. Immutable once produced.
type Row struct {
	Kind  RowKind         `json:"kind"`
	Level territory.Level `json:"level"`
	Name  string          `json:"name"`
	Data  *RowData        `json:"data,omitempty"`
}

// SectionHeader builds the divider row announcing a level.
func SectionHeader(level territory.Level) Row {
	return Row{Kind: KindSectionHeader, Level: level, Name: level.Label()}
}

// DataRow builds a territory data row.
func DataRow(level territory.Level, name string, data RowData) Row {
	return Row{Kind: KindData, Level: level, Name: name, Data: &data}
}

// Assemble concatenates the per-level rows in fixed hierarchy order,
// inserting one section header before every level except Regional. The
// within-level ordering of byLevel is preserved as-is; presentation
// pairs headers and rows by position.
func Assemble(byLevel map[territory.Level][]Row) []Row {
	var out []Row
	for _, level := range territory.Levels() {
		if level != territory.LevelRegional {
			out = append(out, SectionHeader(level))
		}
		out = append(out, byLevel[level]...)
	}
	return out
}
