package usecase

import (
	"reflect"
	"testing"
)

func TestContentTokens(t *testing.T) {
	tests := []struct {
		name       string
		normalized string
		want       []string
	}{
		{
			name:       "drops generic venue words",
			normalized: "nature journal",
			want:       []string{"nature"},
		},
		{
			name:       "drops prepositions and articles",
			normalized: "the journal of applied physics",
			want:       []string{"applied", "physics"},
		},
		{
			name:       "keeps single letters that distinguish series",
			normalized: "physical review b",
			want:       []string{"physical", "review", "b"},
		},
		{
			name:       "removes duplicates",
			normalized: "cell cell biology",
			want:       []string{"cell", "biology"},
		},
		{
			name:       "falls back to all words when everything is noise",
			normalized: "the journal",
			want:       []string{"the", "journal"},
		},
		{
			name:       "empty input",
			normalized: "",
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contentTokens(tt.normalized)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("contentTokens(%q) = %v, want %v", tt.normalized, got, tt.want)
			}
		})
	}
}

func TestNormalizeISSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0028-0836", "00280836"},
		{"00280836", "00280836"},
		{" 1234-567x ", "1234567X"},
		{"1234-56789", ""},
		{"nature", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeISSN(tt.in); got != tt.want {
				t.Errorf("normalizeISSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQueryISSN(t *testing.T) {
	t.Run("accepts a valid ISSN", func(t *testing.T) {
		issn, ok := queryISSN("0028-0836")
		if !ok || issn != "00280836" {
			t.Errorf("queryISSN = %q, %v; want 00280836, true", issn, ok)
		}
	})

	t.Run("accepts X check digit", func(t *testing.T) {
		// 0000-006X: 6*2 = 12, 12 mod 11 = 1, 11-1 = 10 -> X
		if _, ok := queryISSN("0000-006X"); !ok {
			t.Error("queryISSN rejected a valid X check digit")
		}
	})

	t.Run("rejects wrong check digit", func(t *testing.T) {
		if _, ok := queryISSN("0028-0837"); ok {
			t.Error("queryISSN accepted an invalid check digit")
		}
	})

	t.Run("rejects non ISSN text", func(t *testing.T) {
		if _, ok := queryISSN("nature"); ok {
			t.Error("queryISSN accepted plain text")
		}
	})
}
