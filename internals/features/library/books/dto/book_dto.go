package dto

// BookRow is the scan target for the catalog queries (catalog columns
// plus per-book item/loan counts).
type BookRow struct {
	BookID          uint   `gorm:"column:book_id"`
	Title           string `gorm:"column:title"`
	Author          string `gorm:"column:author"`
	ISBN            string `gorm:"column:isbn"`
	PublicationYear int    `gorm:"column:publication_year"`
	Category        string `gorm:"column:category"`
	TotalItems      int    `gorm:"column:total_items"`
	LoanedItems     int    `gorm:"column:loaned_items"`
}

type BookResponse struct {
	BookID          uint   `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	PublicationYear int    `json:"publication_year"`
	Category        string `json:"category"`
	TotalItems      int    `json:"total_items"`
	AvailableItems  int    `json:"available_items"`
}

func ToBookResponse(r BookRow) BookResponse {
	available := r.TotalItems - r.LoanedItems
	if available < 0 {
		available = 0
	}
	return BookResponse{
		BookID:          r.BookID,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: r.PublicationYear,
		Category:        r.Category,
		TotalItems:      r.TotalItems,
		AvailableItems:  available,
	}
}
