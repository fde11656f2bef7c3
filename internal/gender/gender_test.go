package gender

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		username    string
		displayName string
		want        Gender
	}{
		{"fitking99", "King of Gains", Male},
		{"gymqueen_x", "", Female},
		{"mr_smith", "", Male},
		{"miss_taylor", "", Female},
		{"jdoe", "John Doe", Male},
		{"xx_maria_xx", "", Female},
		{"david_fitness", "", Male},
		// display name wins over username
		{"john123", "Maria Silva", Female},
		// stop words and short runs never classify
		{"the_official_page", "Official Account", Unknown},
		{"x9", "", Unknown},
		{"", "", Unknown},
		// long titles match inside glued-together tokens
		{"viking_raids", "", Male},
	}

	for _, tc := range cases {
		if got := Classify(tc.username, tc.displayName); got != tc.want {
			t.Errorf("Classify(%q, %q) = %v, want %v", tc.username, tc.displayName, got, tc.want)
		}
	}
}

func TestMatchesIsInclusive(t *testing.T) {
	if !Matches(Female, Female) {
		t.Error("exact match should pass")
	}
	if !Matches(Unknown, Female) {
		t.Error("unknown should pass any target")
	}
	if Matches(Male, Female) {
		t.Error("opposite classification should be filtered out")
	}
}

func TestValidTarget(t *testing.T) {
	for _, ok := range []string{"male", "female"} {
		if !ValidTarget(ok) {
			t.Errorf("ValidTarget(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "unknown", "both", "MALE"} {
		if ValidTarget(bad) {
			t.Errorf("ValidTarget(%q) = true", bad)
		}
	}
}

func TestExtractNameTokens(t *testing.T) {
	got := extractNameTokens("The_Official_John99Fitness")
	want := []string{"john"}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("extractNameTokens = %v, want %v", got, want)
	}
}
