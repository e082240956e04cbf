package menu

import "testing"

func TestCombineTwoGroups(t *testing.T) {
	groups := [][]ComboOption{
		{{GroupName: "Size", Name: "Small"}, {GroupName: "Size", Name: "Large"}},
		{{GroupName: "Base", Name: "Standard"}, {GroupName: "Base", Name: "Gluten-free"}},
	}

	combos := Combine(groups)
	if len(combos) != 4 {
		t.Fatalf("len=%d", len(combos))
	}

	wantKeys := []string{
		"Size:Small;Base:Standard",
		"Size:Small;Base:Gluten-free",
		"Size:Large;Base:Standard",
		"Size:Large;Base:Gluten-free",
	}
	for i, combo := range combos {
		if ComboKey(combo) != wantKeys[i] {
			t.Fatalf("combo %d: got %q want %q", i, ComboKey(combo), wantKeys[i])
		}
	}
}

func TestCombineSingleGroup(t *testing.T) {
	combos := Combine([][]ComboOption{{{GroupName: "Size", Name: "Small"}, {GroupName: "Size", Name: "Large"}}})
	if len(combos) != 2 {
		t.Fatalf("len=%d", len(combos))
	}
	if ComboKey(combos[0]) != "Size:Small" || ComboKey(combos[1]) != "Size:Large" {
		t.Fatalf("keys: %q %q", ComboKey(combos[0]), ComboKey(combos[1]))
	}
}

func TestCombineCounts(t *testing.T) {
	mk := func(group string, n int) []ComboOption {
		out := make([]ComboOption, n)
		for i := range out {
			out[i] = ComboOption{GroupName: group, Name: string(rune('a' + i))}
		}
		return out
	}

	cases := []struct {
		name  string
		sizes []int
		want  int
	}{
		{name: "none", sizes: nil, want: 0},
		{name: "3x2", sizes: []int{3, 2}, want: 6},
		{name: "2x3x4", sizes: []int{2, 3, 4}, want: 24},
		{name: "empty group kills product", sizes: []int{2, 0}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups := make([][]ComboOption, 0, len(tc.sizes))
			for i, n := range tc.sizes {
				groups = append(groups, mk(string(rune('A'+i)), n))
			}
			combos := Combine(groups)
			if len(combos) != tc.want {
				t.Fatalf("got %d want %d", len(combos), tc.want)
			}
			seen := map[string]struct{}{}
			for _, combo := range combos {
				key := ComboKey(combo)
				if _, dup := seen[key]; dup {
					t.Fatalf("duplicate combination %q", key)
				}
				seen[key] = struct{}{}
			}
		})
	}
}
