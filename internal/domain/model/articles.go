package model

// Article 汚染に関する記事
type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Image   string `json:"image"`
}

type GetArticlesResponse struct {
	Articles []Article `json:"articles"`
}
