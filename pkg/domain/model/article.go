package model

// Article is a raw news item as delivered by an article source
type Article struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	URL      string `json:"url,omitempty"`
}

// ToInsight builds a not-yet-persisted insight carrying the given embedding
func (a *Article) ToInsight(embedding []float32) *Insight {
	return &Insight{
		Title:     a.Title,
		Content:   a.Content,
		Category:  a.Category,
		URL:       a.URL,
		Embedding: embedding,
	}
}
