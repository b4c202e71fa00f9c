package sweep

import "github.com/jobwatchd/jobwatch/internal/model"

// DefaultPageSize is the number of jobs per page on the on-demand path,
// matching the per-sweep notification cap.
const DefaultPageSize = 5

// Paginate slices jobs into 1-based pages. Out-of-range page numbers clamp
// to [1, totalPages] instead of erroring. An empty input yields
// totalPages = 0, which callers treat as "no results" rather than an
// out-of-range request.
func Paginate(jobs []model.Job, page, pageSize int) (pageItems []model.Job, clampedPage, totalPages int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(jobs)
	if total == 0 {
		return nil, 1, 0
	}

	totalPages = (total + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	return jobs[start:end], page, totalPages
}
