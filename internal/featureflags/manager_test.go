package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("referrals=on,games=off,attendance=true,reports=false,search=1,ranking=0")

	if !m.Enabled("referrals", 1) || !m.Enabled("attendance", 1) || !m.Enabled("search", 1) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("games", 1) || m.Enabled("reports", 1) || m.Enabled("ranking", 1) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("referrals=100%,games=0%,new_boards=25%")

	if !m.Enabled("referrals", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("games", 1) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("new_boards", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("new_boards", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("new_boards", 0) {
		t.Fatal("percentage rollout requires non-zero userID")
	}
}

func TestEnabled_UnknownFlagIsOff(t *testing.T) {
	m := NewManager("referrals=on")

	if m.Enabled("bulk_operations", 7) {
		t.Fatal("a flag absent from the config must evaluate false")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,referrals=on, new_boards = 20% ,games=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["referrals"] != "on" || raw["new_boards"] != "20%" || raw["games"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot(123)
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap["referrals"] || snap["games"] {
		t.Fatalf("unexpected snapshot evaluation: %#v", snap)
	}
}
