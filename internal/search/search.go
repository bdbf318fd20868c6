package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultObjective ResultType = "objective"
	ResultKeyResult ResultType = "keyresult"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type        ResultType `json:"type"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	ObjectiveID string     `json:"objectiveId"`
	Group       string     `json:"group"`
}

// Query describes a search request.
type Query struct {
	Text        string
	FilterType  ResultType // empty = all types
	FilterGroup string
	Limit       int
	Offset      int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ObjectiveRecord is the data indexed for an objective.
type ObjectiveRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Purpose string `json:"purpose"`
	Group   string `json:"group"`
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
}

// KeyResultRecord is the data indexed for a key result.
type KeyResultRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Evidence    string `json:"evidence"`
	Comments    string `json:"comments"`
	ObjectiveID string `json:"objectiveId"`
	Group       string `json:"group"`
	Status      string `json:"status"`
}
