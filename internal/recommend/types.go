package recommend

// analyzeResponse is the wire format of GET /analyze.
type analyzeResponse struct {
	Emotion string `json:"emotion"`
}

// recommendResponse is the wire format of GET /v1/recommend.
type recommendResponse struct {
	Items []recommendItem `json:"items"`
}

// recommendItem is one recommended book on the wire.
type recommendItem struct {
	ISBN13     string  `json:"isbn13"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Cover      string  `json:"cover"`
	Publisher  string  `json:"publisher"`
	Similarity float64 `json:"similarity"`
}
