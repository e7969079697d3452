package search

import "veloce-backend/internal/domain"

// TotalPages returns ceil(total/pageSize); 0 for an empty result set.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate slices one page out of results. The page is clamped to
// [1, TotalPages]; concatenating every page reproduces results exactly.
// Returns the clamped page alongside the slice.
func Paginate(results []domain.CarRecord, page, pageSize int) ([]domain.CarRecord, int) {
	totalPages := TotalPages(len(results), pageSize)
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if totalPages == 0 {
		return []domain.CarRecord{}, 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end], page
}
