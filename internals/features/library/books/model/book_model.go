package model

// LibraryModel is a branch. Items and users are scoped to one library;
// the scope keeps loans within the same branch.
type LibraryModel struct {
	ID   uint   `gorm:"primaryKey" json:"library_id"`
	Name string `gorm:"size:255;not null" json:"name"`
}

func (LibraryModel) TableName() string {
	return "libraries"
}

// BookModel is catalog metadata. Immutable once seeded; there is no
// book-edit flow.
type BookModel struct {
	ID              uint   `gorm:"primaryKey" json:"book_id"`
	Title           string `gorm:"size:255;not null;index" json:"title"`
	Author          string `gorm:"size:255;not null;index" json:"author"`
	ISBN            string `gorm:"size:32" json:"isbn"`
	PublicationYear int    `json:"publication_year"`
	Category        string `gorm:"size:100;index" json:"category"`
}

func (BookModel) TableName() string {
	return "books"
}

// ItemModel is one physical copy of a book, scoped to a library.
type ItemModel struct {
	ID        uint `gorm:"primaryKey" json:"item_id"`
	BookID    uint `gorm:"not null;index" json:"book_id"`
	LibraryID uint `gorm:"not null;index" json:"library_id"`
}

func (ItemModel) TableName() string {
	return "items"
}
