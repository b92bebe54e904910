package textnorm

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestClean_RemovesBlocksAndTags(t *testing.T) {
	in := `<html><head><style>body{color:red}</style><script>var x = "<p>no</p>";</script></head>
<body><!-- banner --><noscript>Ative o JavaScript</noscript>
<h1>Título</h1><p>Chuva&nbsp;forte &amp; vento</p>
</body></html>`

	assert.Equal(t, Clean(in), "Título Chuva forte & vento")
}

func TestClean_EmptyInput(t *testing.T) {
	assert.Equal(t, Clean(""), "")
	assert.Equal(t, Clean("   \n\t "), "")
}

func TestClean_UnclosedTagIsKept(t *testing.T) {
	// A lone "<" without a closing ">" is not a tag.
	assert.Equal(t, Clean("a < b e c"), "a < b e c")
}

func TestNormalizeWord_FoldsDiacritics(t *testing.T) {
	assert.Equal(t, NormalizeWord("ação"), NormalizeWord("acao"))
	assert.Equal(t, NormalizeWord("Ação"), "acao")
	assert.Equal(t, NormalizeWord("Previsão"), "previsao")
	assert.Equal(t, NormalizeWord("É"), "e")
	assert.Equal(t, NormalizeWord(""), "")
}

func TestWords(t *testing.T) {
	got := Words("Emergência na cidade, após os temporais! 2026")
	want := []string{"emergencia", "na", "cidade", "apos", "os", "temporais", "2026"}
	assert.Equal(t, got, want)
}

func TestWords_OnlyPunctuation(t *testing.T) {
	assert.Equal(t, len(Words("... --- !!!")), 0)
}
