package version

import "testing"

func TestInfoString(t *testing.T) {
	cases := []struct {
		info Info
		want string
	}{
		{Info{Name: "textmate-validate", Version: "v1.2.3"}, "textmate-validate v1.2.3"},
		{Info{Name: "textmate-validate", Version: "dev", Commit: "abc1234"}, "textmate-validate dev (abc1234)"},
	}
	for _, tc := range cases {
		if got := tc.info.String(); got != tc.want {
			t.Fatalf("String()=%q want %q", got, tc.want)
		}
	}
}

func TestGetUsesLinkerValues(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })
	Version, Commit = "v9.9.9", "deadbee"

	got := Get()
	if got.Name != Name || got.Version != "v9.9.9" || got.Commit != "deadbee" {
		t.Fatalf("Get()=%+v", got)
	}
}
