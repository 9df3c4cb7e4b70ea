package search

// Mode selects how a Search call ranks candidates.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// Result is a single hit returned from a Search call.
type Result struct {
	DocID       string
	Title       string
	URL         string
	Snippet     string
	Score       float64
	Source      string
	Company     string
	Authors     []string
	Topics      []string
	PublishedAt string
}

// hydratedDoc is the subset of a doc:{doc_id} hash the planner needs to
// score and render a candidate, independent of which query produced it.
type hydratedDoc struct {
	docID       string
	title       string
	content     string
	url         string
	source      string
	company     string
	authors     []string
	topics      []string
	publishedAt string
	embedding   []byte
}

func hydratedDocFromHash(docID string, hash map[string]string) hydratedDoc {
	return hydratedDoc{
		docID:       docID,
		title:       hash["title"],
		content:     hash["content"],
		url:         hash["url"],
		source:      hash["source"],
		company:     hash["company"],
		authors:     splitNonEmpty(hash["authors"]),
		topics:      splitNonEmpty(hash["topics"]),
		publishedAt: hash["published_at"],
		embedding:   []byte(hash["embedding"]),
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
