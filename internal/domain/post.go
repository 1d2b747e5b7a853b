package domain

import "fmt"

type (
	PostId   = string
	Category = string
)

// CategoryAll is the filter value matching every category. It is never a post category.
const CategoryAll Category = "all"

type Post struct {
	Id        PostId   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  Category `json:"category"`
	Timestamp string   `json:"timestamp"`
	Edited    bool     `json:"edited"`
	ImageURL  string   `json:"imageUrl"`
}

// PostDraft is user input for creating or editing a post.
type PostDraft struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category Category `json:"category"`
}

// Draft returns the editable fields of p.
func (p Post) Draft() PostDraft {
	return PostDraft{Title: p.Title, Content: p.Content, Category: p.Category}
}

// for debug
func (p Post) String() string {
	return fmt.Sprintf("[id:%s, title:%q, category:%s, edited:%t, timestamp:%s]", p.Id, p.Title, p.Category, p.Edited, p.Timestamp)
}
