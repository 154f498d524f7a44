package controller

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"library_backend/internals/features/library/books/dto"
	helper "library_backend/internals/helpers"
)

type BookController struct {
	DB *gorm.DB
}

func NewBookController(db *gorm.DB) *BookController {
	return &BookController{DB: db}
}

const bookSelect = `b.id AS book_id, b.title, b.author, b.isbn, b.publication_year, b.category,
COUNT(DISTINCT i.id) AS total_items, COUNT(DISTINCT l.item_id) AS loaned_items`

const bookGroup = "b.id, b.title, b.author, b.isbn, b.publication_year, b.category"

// catalogQuery builds the shared books+availability aggregation. An open
// loan (return_date IS NULL) marks its item as unavailable.
func (ctl *BookController) catalogQuery(libraryID *uint) *gorm.DB {
	q := ctl.DB.Table("books AS b").Select(bookSelect)
	if libraryID != nil {
		q = q.Joins("LEFT JOIN items i ON i.book_id = b.id AND i.library_id = ?", *libraryID)
	} else {
		q = q.Joins("LEFT JOIN items i ON i.book_id = b.id")
	}
	return q.
		Joins("LEFT JOIN loans l ON l.item_id = i.id AND l.return_date IS NULL").
		Group(bookGroup)
}

// ListBooks is the public catalog: q/category filters, optional
// library_id scope for the counts, page/page_size pagination.
func (ctl *BookController) ListBooks(c *fiber.Ctx) error {
	paging, ok, err := helper.ResolvePaging(c, 20, 100)
	if !ok {
		return err
	}

	var libraryID *uint
	if raw := strings.TrimSpace(c.Query("library_id")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid_library_id", "library_id must be an integer.")
		}
		id := uint(v)
		libraryID = &id
	}

	q := ctl.catalogQuery(libraryID)

	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("(LOWER(b.title) LIKE ? OR LOWER(b.author) LIKE ?)", like, like)
	}
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		q = q.Where("LOWER(b.category) = ?", strings.ToLower(category))
	}

	var rows []dto.BookRow
	if err := q.Order("b.title ASC").
		Limit(paging.PageSize).Offset(paging.Offset).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}

	result := make([]dto.BookResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, dto.ToBookResponse(r))
	}
	return helper.JsonOK(c, result)
}

// GetBook returns one book with its availability counts.
func (ctl *BookController) GetBook(c *fiber.Ctx) error {
	bookID, ok, err := helper.ParamID(c, "id")
	if !ok {
		return err
	}

	var libraryID *uint
	if raw := strings.TrimSpace(c.Query("library_id")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid_library_id", "library_id must be an integer.")
		}
		id := uint(v)
		libraryID = &id
	}

	var rows []dto.BookRow
	if err := ctl.catalogQuery(libraryID).
		Where("b.id = ?", bookID).
		Scan(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, helper.ErrDBError, "Database error occurred.")
	}
	if len(rows) == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "book_not_found", "Book not found.")
	}

	return helper.JsonOK(c, dto.ToBookResponse(rows[0]))
}
