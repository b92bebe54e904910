package summary

import (
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

const rioStorm = "Chuvas fortes atingem o Rio de Janeiro nesta terça. " +
	"O governo declarou estado de emergência na cidade após os temporais. " +
	"Moradores relatam alagamentos em diversos bairros da zona sul. " +
	"A prefeitura abriu abrigos temporários para desalojados. " +
	"Previsão indica mais chuva nos próximos dias."

func TestSummarize_PicksTopSentencesInDocumentOrder(t *testing.T) {
	got := Summarize(rioStorm, 2)

	want := "Chuvas fortes atingem o Rio de Janeiro nesta terça. " +
		"Moradores relatam alagamentos em diversos bairros da zona sul."
	assert.Equal(t, got, want)
}

func TestSummarize_ShortCircuitKeepsSentencesUnchanged(t *testing.T) {
	text := "Primeira frase com tamanho suficiente! Segunda frase também é longa o bastante?"
	assert.Equal(t, Summarize(text, 3), text)
}

func TestSummarize_SubsetOfInputInOriginalOrder(t *testing.T) {
	sentences := SplitSentences(rioStorm)
	got := SplitSentences(Summarize(rioStorm, 3))

	assert.Equal(t, len(got), 3)

	last := -1
	for _, g := range got {
		idx := -1
		for i, s := range sentences {
			if s == g {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.Fatalf("sentence %q is not part of the input", g)
		}
		if idx <= last {
			t.Fatalf("sentence %q is out of document order", g)
		}
		last = idx
	}
}

func TestSummarize_FrequentTermsWin(t *testing.T) {
	text := "O metrô de São Paulo terá greve geral amanhã cedo. " +
		"Sindicato confirma greve no metrô e nos trens da cidade. " +
		"Torcedores comemoraram o título do campeonato estadual. " +
		"A greve do metrô deve afetar milhões de passageiros em São Paulo."

	got := Summarize(text, 2)
	if strings.Contains(got, "Torcedores") {
		t.Errorf("unrelated sentence selected: %q", got)
	}
	assert.Equal(t, len(SplitSentences(got)), 2)
}

func TestSummarize_AlwaysEndsWithTerminalPunctuation(t *testing.T) {
	inputs := []string{
		rioStorm,
		"Uma frase sem ponto final mas longa o bastante para contar",
		"curta",
		"Frase um bem comprida aqui. Frase dois bem comprida aqui. Frase três sem ponto e bem comprida",
	}
	for _, in := range inputs {
		out := Summarize(in, 2)
		last := out[len(out)-1]
		if last != '.' && last != '!' && last != '?' {
			t.Errorf("Summarize(%q) = %q, missing terminal punctuation", in, out)
		}
	}
}

func TestSummarize_EmptyInputReturnsSentinel(t *testing.T) {
	assert.Equal(t, Summarize("", 3), Unavailable)
	assert.Equal(t, Summarize("  \n ", 3), Unavailable)
}

func TestSummarize_AllFragmentsFallsBackToLeadingOnes(t *testing.T) {
	got := Summarize("Oi. Tudo bem? Sim. Até logo.", 2)
	assert.Equal(t, got, "Oi. Tudo bem?")
}

func TestSummarize_DefaultSentenceCount(t *testing.T) {
	got := Summarize(rioStorm, 0)
	assert.Equal(t, len(SplitSentences(got)), DefaultMaxSentences)
}

func TestSummarize_TruncatesLongInput(t *testing.T) {
	s := New(Options{MaxChars: 60})
	got := s.Summarize(rioStorm, 3)
	// only the first sentence survives the 60-rune cut intact
	if !strings.HasPrefix(got, "Chuvas fortes atingem o Rio de Janeiro nesta terça.") {
		t.Errorf("unexpected summary %q", got)
	}
	if strings.Contains(got, "Moradores") {
		t.Errorf("text past the budget leaked into summary: %q", got)
	}
}

func TestSummarizeHTML(t *testing.T) {
	s := New(DefaultOptions())
	got := s.SummarizeHTML("<div><script>alert('x')</script><p>"+rioStorm+"</p></div>", 2)
	assert.Equal(t, strings.Contains(got, "alert"), false)
	assert.Equal(t, len(SplitSentences(got)), 2)
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Olá mundo! Como vai?  Tudo certo. Versão 2.0 saiu")
	want := []string{"Olá mundo!", "Como vai?", "Tudo certo.", "Versão 2.0 saiu"}
	assert.Equal(t, got, want)
}

func TestSummarize_Ranking(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			// both score 7 on frequency; only the second has 8 words
			name: "readable length bonus breaks equal frequency",
			text: "Bolsa registra queda forte nesta segunda feira. " +
				"Governo anuncia novo pacote fiscal de grande impacto.",
			want: "Governo anuncia novo pacote fiscal de grande impacto.",
		},
		{
			name: "equal scores keep the earlier sentence",
			text: "Prefeitura inaugura nova escola municipal no centro hoje. " +
				"Estado amplia horário dos hospitais públicos em toda capital.",
			want: "Prefeitura inaugura nova escola municipal no centro hoje.",
		},
		{
			name: "tie across a longer article",
			text: rioStorm,
			want: "Chuvas fortes atingem o Rio de Janeiro nesta terça.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Summarize(tt.text, 1), tt.want)
		})
	}
}

func TestNew_ZeroBonusDisablesBand(t *testing.T) {
	text := "Bolsa registra queda forte nesta segunda feira. " +
		"Governo anuncia novo pacote fiscal de grande impacto."

	s := New(Options{Bonus: 0})
	assert.Equal(t, s.Summarize(text, 1), "Bolsa registra queda forte nesta segunda feira.")

	s = New(Options{Bonus: -1})
	assert.Equal(t, s.Summarize(text, 1), "Governo anuncia novo pacote fiscal de grande impacto.")
}
