package domain

// Product — товар в локальной копии каталога.
type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
	Likes int    `json:"likes"`
}
