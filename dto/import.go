package dto

// ImportRequest is the JSON form of a batch: one object per spreadsheet row,
// keyed by column header.
type ImportRequest struct {
	FileName string                   `json:"fileName"`
	Rooms    []map[string]interface{} `json:"rooms"`
	Events   []map[string]interface{} `json:"events"`
}

// ImportListQuery pages GET /importaciones
type ImportListQuery struct {
	Page  int `form:"page" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0,max=100"`
}
