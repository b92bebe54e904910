package app

import "time"

type demoItem struct {
	Title   string
	Link    string
	Source  string
	Summary string
}

const demoSource = "Meme Day"

// demoItems stand in for the headline when no feed answers.
var demoItems = []demoItem{
	{
		Title:   "Não foi possível carregar a notícia do dia",
		Link:    "https://g1.globo.com/",
		Source:  demoSource,
		Summary: "As fontes de notícias não responderam a tempo. Enquanto isso, confira as manchetes direto nos portais.",
	},
	{
		Title:   "A notícia do dia volta em instantes",
		Link:    "https://noticias.uol.com.br/",
		Source:  demoSource,
		Summary: "Estamos com dificuldade para falar com os feeds agora. Tente atualizar a página daqui a pouco.",
	},
	{
		Title:   "Hoje o meme do dia tirou folga",
		Link:    "https://news.google.com/home?hl=pt-BR&gl=BR&ceid=BR:pt-419",
		Source:  demoSource,
		Summary: "Nenhuma fonte trouxe uma manchete válida desta vez. Volte mais tarde para ver a notícia mais comentada.",
	},
}

// demoFor rotates the demo items by day so repeated outages vary the card.
func demoFor(t time.Time) demoItem {
	return demoItems[t.YearDay()%len(demoItems)]
}
