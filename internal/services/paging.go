package services

import "strings"

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func totalPages(totalCount int64, limit int) int64 {
	return (totalCount + int64(limit) - 1) / int64(limit)
}

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}
