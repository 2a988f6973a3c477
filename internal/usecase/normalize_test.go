package usecase

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
		{"case folded", "NATURE", "nature"},
		{"whitespace collapsed", "  Nature   Reviews \t Genetics ", "nature reviews genetics"},
		{"punctuation stripped", "J. Chem. Phys.", "j chem phys"},
		{"hyphen splits words", "Non-Linear Dynamics", "non linear dynamics"},
		{"ampersand spelled out", "Science & Society", "science and society"},
		{"apostrophe dropped", "Women's Health", "womens health"},
		{"curly apostrophe dropped", "Women’s Health", "womens health"},
		{"diacritics removed", "Revista de Saúde Pública", "revista de saude publica"},
		{"fullwidth letters", "ＮＡＴＵＲＥ", "nature"},
		{"parentheses and colon", "Lancet (London, England): Oncology", "lancet london england oncology"},
		{"digits kept", "Journal 2000", "journal 2000"},
		{"spacing vowel signs kept", "\u0939\u093f\u0926\u0940 Review", "\u0939\u093f\u0926\u0940 review"},
		{"nonspacing marks dropped between spacing marks", "\u0939\u093f\u0902\u0926\u0940", "\u0939\u093f\u0926\u0940"},
		{"enclosing mark kept", "A\u20dd Letters", "a\u20dd letters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Nature", "J. Chem. Phys.", "Science & Society", "Revista de Saúde Pública",
		"\u0939\u093f\u0902\u0926\u0940 \u092a\u0924\u094d\u0930\u093f\u0915\u093e",
		"  IEEE  Transactions on Pattern Analysis and Machine Intelligence ",
	}

	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
