package embeddings

// ProviderName identifies which backend produced an embedding, stored
// alongside the vector for observability.
type ProviderName string

const (
	ProviderDummy           ProviderName = "dummy"
	ProviderHuggingFace     ProviderName = "huggingface"
	ProviderLateInteraction ProviderName = "pylate"
)

// RetrievedDoc is one hit returned by a late-interaction backend's
// retrieve call.
type RetrievedDoc struct {
	ID    string
	Score float64
}
