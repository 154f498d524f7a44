package helper

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive integer path parameter. The returned bool is
// false when the caller should stop: an invalid_ids response was sent.
func ParamID(c *fiber.Ctx, name string) (uint, bool, error) {
	raw := strings.TrimSpace(c.Params(name))
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, false, JsonError(c, fiber.StatusBadRequest, ErrInvalidIDs, name+" must be a positive integer.")
	}
	return uint(v), true, nil
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

// FormatDate renders a date-only value the way the API serializes dates.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Paging holds normalized page/page_size values.
type Paging struct {
	Page     int
	PageSize int
	Offset   int
}

// ResolvePaging reads ?page= and ?page_size=, defaulting to 1/20 and
// capping page_size at max. ok=false means an invalid_pagination response
// was already written.
func ResolvePaging(c *fiber.Ctx, defaultPageSize, max int) (Paging, bool, error) {
	pageRaw := strings.TrimSpace(c.Query("page", "1"))
	sizeRaw := strings.TrimSpace(c.Query("page_size", strconv.Itoa(defaultPageSize)))

	page, err1 := strconv.Atoi(pageRaw)
	size, err2 := strconv.Atoi(sizeRaw)
	if err1 != nil || err2 != nil {
		return Paging{}, false, JsonError(c, fiber.StatusBadRequest, ErrInvalidPagination,
			"page and page_size must be integers.")
	}
	if page <= 0 || size <= 0 || size > max {
		return Paging{}, false, JsonError(c, fiber.StatusBadRequest, ErrInvalidPagination,
			"page and page_size must be positive, and page_size cannot be greater than "+strconv.Itoa(max)+".")
	}

	return Paging{Page: page, PageSize: size, Offset: (page - 1) * size}, true, nil
}
