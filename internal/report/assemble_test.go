package report

import (
	"testing"

	"github.com/honai-puma/honai-puma/internal/territory"
)

func TestAssembleOrderingInvariant(t *testing.T) {
	byLevel := map[territory.Level][]Row{
		territory.LevelRegional: {DataRow(territory.LevelRegional, "PUMA", RowData{})},
		territory.LevelBranch: {
			DataRow(territory.LevelBranch, "AMBON", RowData{}),
			DataRow(territory.LevelBranch, "JAYAPURA", RowData{}),
		},
		territory.LevelSubbranch: {DataRow(territory.LevelSubbranch, "AMBON INNER", RowData{})},
		territory.LevelCluster:   {DataRow(territory.LevelCluster, "AMBON 1", RowData{})},
		territory.LevelKabupaten: {DataRow(territory.LevelKabupaten, "KOTA AMBON", RowData{})},
	}

	rows := Assemble(byLevel)

	if rows[0].Kind != KindData || rows[0].Level != territory.LevelRegional {
		t.Fatalf("sequence must open with the regional data row: %+v", rows[0])
	}

	var headers []string
	for _, row := range rows {
		if row.Kind == KindSectionHeader {
			headers = append(headers, row.Name)
		}
	}
	want := []string{"BRANCH", "SUBBRANCH", "CLUSTER", "KABUPATEN"}
	if len(headers) != len(want) {
		t.Fatalf("expected exactly 4 headers, got %v", headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Fatalf("header %d: want %s got %s", i, want[i], headers[i])
		}
	}

	// Branch rows follow their header immediately and keep input order.
	if rows[1].Name != "BRANCH" || rows[2].Name != "AMBON" || rows[3].Name != "JAYAPURA" {
		t.Fatalf("branch section out of order: %+v %+v %+v", rows[1], rows[2], rows[3])
	}
}

func TestAssembleHeadersPresentEvenWhenLevelEmpty(t *testing.T) {
	rows := Assemble(map[territory.Level][]Row{
		territory.LevelRegional: {DataRow(territory.LevelRegional, "PUMA", RowData{})},
	})
	count := 0
	for _, row := range rows {
		if row.Kind == KindSectionHeader {
			count++
			if row.Data != nil {
				t.Fatalf("header rows carry no data: %+v", row)
			}
		}
	}
	if count != 4 {
		t.Fatalf("expected 4 headers, got %d", count)
	}
}

func TestSectionHeaderShape(t *testing.T) {
	header := SectionHeader(territory.LevelCluster)
	if header.Kind != KindSectionHeader || header.Name != "CLUSTER" || header.Data != nil {
		t.Fatalf("unexpected header: %+v", header)
	}
}
