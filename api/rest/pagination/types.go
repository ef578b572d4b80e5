package pagination

// limit and offset taken from the query string
type Params struct {
	Limit  int
	Offset int
}

// returned next to every paged list
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}
