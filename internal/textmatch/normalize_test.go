package textmatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Key
	}{
		{"empty", "", ""},
		{"whitespace only", "  \t\n ", ""},
		{"address with spaces and punctuation", "경상북도 울릉군 서면 태하리 123-4", "경상북도울릉군서면태하리1234"},
		{"uppercase ascii lowered", "Ulleung DORO 7", "ulleungdoro7"},
		{"symbols stripped", "사동항(도동방면) #2", "사동항도동방면2"},
		{"only symbols", "!?~***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"경상북도 울릉군 울릉읍 도동리 123",
		"  Mixed 한글 and ASCII 99  ",
		"",
		"낙석 발생 위치 : 태하리",
	}
	for _, s := range inputs {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(string(once)), "normalize must be idempotent for %q", s)
	}
}

func TestNormalizeComposesJamo(t *testing.T) {
	// The same syllable written with combining jamo (NFD) and precomposed
	// (NFC) must normalize to the same key.
	decomposed := "한국" // 한국 as jamo
	precomposed := "한국"
	assert.Equal(t, Normalize(precomposed), Normalize(decomposed))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want []string
	}{
		{"empty key", "", nil},
		{"digit and syllable runs", "태하리123도로", []string{"태하리", "123", "도로"}},
		{"single-rune tokens dropped", "동1도로", []string{"도로"}},
		{"ascii runs are not tokens", "abc도동리77", []string{"도동리", "77"}},
		{"all short", "가1나2", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.key)
			assert.Len(t, got, len(tt.want))
			for _, tok := range tt.want {
				assert.Contains(t, got, tok)
			}
		})
	}
}

func TestTokenSetOverlap(t *testing.T) {
	// Korean runs only split where digits intervene, so shared tokens are
	// typically the place-name run plus the lot number.
	a := Tokenize("태하리123사고")
	b := Tokenize("태하리123사진")
	c := Tokenize("도동리999")

	assert.Equal(t, 2, a.Overlap(b))
	assert.Equal(t, 2, b.Overlap(a))
	assert.Equal(t, 0, a.Overlap(c))
	assert.Equal(t, 0, TokenSet(nil).Overlap(a))
	assert.Equal(t, 0, a.Overlap(nil))
}

func TestCandidates(t *testing.T) {
	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, Candidates("", RegionVariants))
		assert.Nil(t, Candidates("  !? ", RegionVariants))
	})

	t.Run("base key always first", func(t *testing.T) {
		cands := Candidates("경상북도 울릉군 태하리 123", RegionVariants)
		assert.Equal(t, Key("경상북도울릉군태하리123"), cands[0])
	})

	t.Run("region variants deduplicated", func(t *testing.T) {
		cands := Candidates("태하리 123", RegionVariants)
		// No region prefix present: every variant equals the base.
		assert.Equal(t, []Key{"태하리123"}, cands)
	})

	t.Run("province and county stripped", func(t *testing.T) {
		cands := Candidates("경상북도 울릉군 태하리", RegionVariants)
		assert.Contains(t, cands, Key("태하리"))
		assert.LessOrEqual(t, len(cands), 5)
	})

	t.Run("nil variant func", func(t *testing.T) {
		assert.Equal(t, []Key{"도동리7"}, Candidates("도동리 7", nil))
	})
}
