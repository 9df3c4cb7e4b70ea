package extractor

/*
ParsedDocument is the canonical, source-agnostic representation an HTML
page is reduced to before it reaches the indexer. Every field is derived
text; nothing here retains DOM structure or markup.
*/
type ParsedDocument struct {
	URL          string
	CanonicalURL string
	Title        string
	Content      string
	Authors      []string
	Company      string
	PublishedAt  string
	Language     string
}
