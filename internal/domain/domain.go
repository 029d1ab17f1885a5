package domain

// Task is the only record the tracker stores.
type Task struct {
	ID    int    `json:"id" example:"1"`
	Title string `json:"title" example:"Buy milk"`
	Done  bool   `json:"done"`
}
