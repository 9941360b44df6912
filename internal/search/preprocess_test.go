package search

import "testing"

func TestFlattenList_JSONArray(t *testing.T) {
	got := FlattenList(`["WiFi"," Parking ","","Rooftop Gym"]`)
	if got != "WiFi Parking Rooftop Gym" {
		t.Fatalf("FlattenList = %q", got)
	}
}

func TestFlattenList_CommaFallback(t *testing.T) {
	got := FlattenList(" wifi, parking ,, balcony ")
	if got != "wifi parking balcony" {
		t.Fatalf("FlattenList = %q", got)
	}
}

func TestFlattenList_MalformedJSONFallsBack(t *testing.T) {
	// looks like JSON but is not: treated as a comma-separated list
	got := FlattenList(`["wifi", "parking"`)
	if got != `["wifi" "parking"` {
		t.Fatalf("FlattenList = %q", got)
	}
}

func TestFlattenList_Empty(t *testing.T) {
	if got := FlattenList("   "); got != "" {
		t.Fatalf("FlattenList blank = %q", got)
	}
	if got := FlattenList("[]"); got != "" {
		t.Fatalf("FlattenList empty array = %q", got)
	}
}

func TestComposeText(t *testing.T) {
	got := ComposeText("Dhanmondi", "", "  two bedroom \n flat ", "wifi parking")
	if got != "Dhanmondi two bedroom flat wifi parking" {
		t.Fatalf("ComposeText = %q", got)
	}
	if got := ComposeText("", "   "); got != "" {
		t.Fatalf("ComposeText blank parts = %q", got)
	}
}
