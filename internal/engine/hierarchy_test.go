package engine

import (
	"testing"
)

func TestParseCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "chapter", input: "1", want: "1"},
		{name: "item depth", input: "1.2.3.4", want: "1.2.3.4"},
		{name: "surrounding whitespace", input: " 2.1 ", want: "2.1"},
		{name: "leading zeros normalize", input: "01.002", want: "1.2"},
		{name: "empty", input: "", wantErr: true},
		{name: "blank segment", input: "1..2", wantErr: true},
		{name: "trailing dot", input: "1.2.", wantErr: true},
		{name: "non numeric segment", input: "1.a.2", wantErr: true},
		{name: "zero segment", input: "1.0.2", wantErr: true},
		{name: "negative segment", input: "1.-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := ParseCode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCode(%q) = %v, want error", tt.input, code)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCode(%q) error = %v", tt.input, err)
			}
			if code.String() != tt.want {
				t.Errorf("ParseCode(%q).String() = %q, want %q", tt.input, code.String(), tt.want)
			}
		})
	}
}

func TestDepthAndParent(t *testing.T) {
	tests := []struct {
		id         string
		wantDepth  int
		wantParent string
	}{
		{"1", 1, ""},
		{"1.2", 2, "1"},
		{"1.2.3", 3, "1.2"},
		{"1.2.3.4", 4, "1.2.3"},
		{"not-a-code", 0, ""},
	}

	for _, tt := range tests {
		if got := Depth(tt.id); got != tt.wantDepth {
			t.Errorf("Depth(%q) = %d, want %d", tt.id, got, tt.wantDepth)
		}
		if got := ParentID(tt.id); got != tt.wantParent {
			t.Errorf("ParentID(%q) = %q, want %q", tt.id, got, tt.wantParent)
		}
	}
}

func TestPrefixChecks(t *testing.T) {
	tests := []struct {
		name           string
		ancestor       string
		candidate      string
		wantChild      bool
		wantDescendant bool
	}{
		{name: "direct child", ancestor: "1", candidate: "1.2", wantChild: true, wantDescendant: true},
		{name: "grandchild", ancestor: "1", candidate: "1.2.3", wantChild: false, wantDescendant: true},
		{name: "self", ancestor: "1.2", candidate: "1.2", wantChild: false, wantDescendant: false},
		{name: "sibling", ancestor: "1.2", candidate: "1.3", wantChild: false, wantDescendant: false},
		// The classic string-prefix trap: "1.1" must not own "1.10".
		{name: "string prefix trap", ancestor: "1.1", candidate: "1.10", wantChild: false, wantDescendant: false},
		{name: "ten is child of one", ancestor: "1", candidate: "1.10", wantChild: true, wantDescendant: true},
		{name: "malformed ancestor", ancestor: "x", candidate: "x.1", wantChild: false, wantDescendant: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDirectChild(tt.ancestor, tt.candidate); got != tt.wantChild {
				t.Errorf("IsDirectChild(%q, %q) = %v, want %v", tt.ancestor, tt.candidate, got, tt.wantChild)
			}
			if got := IsDescendant(tt.ancestor, tt.candidate); got != tt.wantDescendant {
				t.Errorf("IsDescendant(%q, %q) = %v, want %v", tt.ancestor, tt.candidate, got, tt.wantDescendant)
			}
		})
	}
}

func TestRequiredAncestors(t *testing.T) {
	got := RequiredAncestors("3.2.1.1")
	want := []Ancestor{
		{ID: "3", Level: LevelChapter},
		{ID: "3.2", Level: LevelSubchapter},
		{ID: "3.2.1", Level: LevelSection},
	}

	if len(got) != len(want) {
		t.Fatalf("RequiredAncestors returned %d ancestors, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ancestor[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Non-item depths and malformed codes have no required ancestors.
	if got := RequiredAncestors("1.2"); got != nil {
		t.Errorf("RequiredAncestors(%q) = %v, want nil", "1.2", got)
	}
	if got := RequiredAncestors("bogus"); got != nil {
		t.Errorf("RequiredAncestors(%q) = %v, want nil", "bogus", got)
	}
}

// rowsForTree builds a small structurally valid budget in pre-order.
func rowsForTree(t *testing.T) []LineRow {
	t.Helper()
	ids := []string{"1", "1.1", "1.1.1", "1.1.1.1", "1.1.1.2", "1.2", "1.2.1", "1.2.1.1", "2"}
	rows := make([]LineRow, len(ids))
	for i, id := range ids {
		code, err := ParseCode(id)
		if err != nil {
			t.Fatalf("ParseCode(%q) error = %v", id, err)
		}
		level, _ := LevelForDepth(code.Depth())
		rows[i] = LineRow{ID: id, Code: code, Level: level, Name: "row " + id}
	}
	return rows
}

func TestBuildTreeFlattenRoundTrip(t *testing.T) {
	rows := rowsForTree(t)

	roots := BuildTree(rows)
	if len(roots) != 2 {
		t.Fatalf("BuildTree produced %d roots, want 2", len(roots))
	}

	flat := Flatten(roots)
	if len(flat) != len(rows) {
		t.Fatalf("Flatten returned %d rows, want %d", len(flat), len(rows))
	}
	for i := range rows {
		if flat[i].ID != rows[i].ID {
			t.Errorf("flat[%d].ID = %q, want %q (pre-order must preserve input order)", i, flat[i].ID, rows[i].ID)
		}
	}
}

func TestBuildTreeOrphansBecomeRoots(t *testing.T) {
	code, _ := ParseCode("5.1.1")
	rows := []LineRow{{ID: "5.1.1", Code: code, Level: LevelSection}}

	roots := BuildTree(rows)
	if len(roots) != 1 {
		t.Fatalf("BuildTree produced %d roots, want 1 (orphan promoted)", len(roots))
	}
	if roots[0].ID != "5.1.1" {
		t.Errorf("root ID = %q, want %q", roots[0].ID, "5.1.1")
	}
}

func TestBuildTreeChildrenKeepInputOrder(t *testing.T) {
	// Children deliberately out of numeric order; the tree must not sort.
	ids := []string{"1", "1.3", "1.1", "1.2"}
	rows := make([]LineRow, len(ids))
	for i, id := range ids {
		code, _ := ParseCode(id)
		level, _ := LevelForDepth(code.Depth())
		rows[i] = LineRow{ID: id, Code: code, Level: level}
	}

	roots := BuildTree(rows)
	if len(roots) != 1 {
		t.Fatalf("BuildTree produced %d roots, want 1", len(roots))
	}
	wantOrder := []string{"1.3", "1.1", "1.2"}
	if len(roots[0].Children) != len(wantOrder) {
		t.Fatalf("root has %d children, want %d", len(roots[0].Children), len(wantOrder))
	}
	for i, want := range wantOrder {
		if roots[0].Children[i].ID != want {
			t.Errorf("child[%d].ID = %q, want %q", i, roots[0].Children[i].ID, want)
		}
	}
}
