package version

import "testing"

func TestGet_PrefersLinkerValues(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.4.0", "abc123", "2024-06-01"
	got := Get()
	if got != (Info{Version: "v1.4.0", Commit: "abc123", Date: "2024-06-01"}) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestGet_Defaults(t *testing.T) {
	if got := Get(); got.Version != Version || got.Commit == "" || got.Date == "" {
		t.Errorf("Get() = %+v", got)
	}
}
