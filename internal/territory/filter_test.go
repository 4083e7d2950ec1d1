package territory

import (
	"errors"
	"testing"
)

func TestFilterValidateContainment(t *testing.T) {
	cases := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{name: "empty", filter: Filter{}},
		{name: "branch only", filter: Filter{Branch: "AMBON"}},
		{name: "full chain", filter: Filter{Branch: "AMBON", Subbranch: "AMBON INNER", Cluster: "AMBON 1", Kabupaten: "KOTA AMBON"}},
		{name: "subbranch without branch", filter: Filter{Subbranch: "AMBON INNER"}, wantErr: true},
		{name: "cluster without subbranch", filter: Filter{Branch: "AMBON", Cluster: "AMBON 1"}, wantErr: true},
		{name: "kabupaten without cluster", filter: Filter{Branch: "AMBON", Subbranch: "AMBON INNER", Kabupaten: "KOTA AMBON"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filter.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidFilter) {
					t.Fatalf("expected ErrInvalidFilter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestScopeConditionsCompose(t *testing.T) {
	scope := NewScope("PUMA", Filter{Branch: "JAYAPURA", Subbranch: "SENTANI"})
	conds := scope.Conditions()
	if len(conds) != 3 {
		t.Fatalf("expected 3 conditions, got %d", len(conds))
	}
	if conds[0].Column != "regional" || conds[0].Value != "PUMA" {
		t.Fatalf("expected regional root first, got %+v", conds[0])
	}
	if conds[2].Column != "subbranch" || conds[2].Value != "SENTANI" {
		t.Fatalf("unexpected narrowing order: %+v", conds)
	}
}

func TestScopeParentScopeDropsOwnLevel(t *testing.T) {
	scope := NewScope("PUMA", Filter{Branch: "TIMIKA", Subbranch: "TIMIKA KOTA", Cluster: "TIMIKA 2"})
	parent := scope.ParentScope(LevelCluster)
	if parent.Cluster != "" {
		t.Fatalf("parent scope should drop cluster, got %q", parent.Cluster)
	}
	if parent.Subbranch != "TIMIKA KOTA" || parent.Branch != "TIMIKA" || parent.Regional != "PUMA" {
		t.Fatalf("parent scope lost containment chain: %+v", parent)
	}
}

func TestLevelOrderingAndLabels(t *testing.T) {
	levels := Levels()
	if len(levels) != 5 || levels[0] != LevelRegional || levels[4] != LevelKabupaten {
		t.Fatalf("unexpected level order: %v", levels)
	}
	if LevelBranch.Label() != "BRANCH" || LevelSubbranch.Label() != "SUBBRANCH" {
		t.Fatalf("unexpected labels: %s %s", LevelBranch.Label(), LevelSubbranch.Label())
	}
	if LevelKabupaten.Parent() != LevelCluster {
		t.Fatalf("kabupaten parent should be cluster, got %s", LevelKabupaten.Parent())
	}
}
