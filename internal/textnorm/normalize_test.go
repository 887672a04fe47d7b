package textnorm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
		{"trim and collapse", "  Amazing \t\n Grace  ", "amazing grace"},
		{"lower", "HOLY Spirit", "holy spirit"},
		{"hangul untouched", "주님  앞에", "주님 앞에"},
		{"ideographic space collapses", "주님\u3000사랑", "주님 사랑"},
		{"byte-order marks collapse", "\uFEFF주님\uFEFF사랑", "주님 사랑"},
		{"leading byte-order mark", "\uFEFFAmazing Grace", "amazing grace"},
		{"decomposed hangul composes", "\u1100\u1161\u11ab", "\uac04"},
		{"decomposed latin composes", "Cafe\u0301", "caf\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"  A  b ", "주님의 놀라운 은혜가", "Cafe\u0301 NOIR"} {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeAny(t *testing.T) {
	s := " Hello  World "
	require.Equal(t, "hello world", NormalizeAny(s))
	require.Equal(t, "hello world", NormalizeAny(&s))
	require.Equal(t, "", NormalizeAny((*string)(nil)))
	require.Equal(t, "", NormalizeAny(nil))
	require.Equal(t, "", NormalizeAny(42))
	require.Equal(t, "", NormalizeAny([]string{"a"}))
}

func TestTokens(t *testing.T) {
	require.Equal(t, []string{"주님", "은혜"}, Tokens("주님 은혜"))
	require.Equal(t, []string{"one"}, Tokens("one"))
	require.Empty(t, Tokens(""))
}

func TestLength_CountsCodePoints(t *testing.T) {
	require.Equal(t, 2, Length("입례"))
	require.Equal(t, 5, Length("grace"))
	require.Equal(t, 0, Length(""))
}
