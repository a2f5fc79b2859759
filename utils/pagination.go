package utils

const pageSizeDefault = 20
const pageSizeMax = 100

// GetPaginationParams calculates the offset and limit for pagination based on the provided values.
// If offset or limit are nil, default values are used. The limit is capped at a maximum value.
func GetPaginationParams(offset *int, limit *int) (int, int) {
	finalOffset := 0
	finalLimit := pageSizeDefault

	if offset != nil && *offset >= 0 {
		finalOffset = *offset
	}

	if limit != nil && *limit > 0 {
		finalLimit = min(*limit, pageSizeMax)
	}

	return finalOffset, finalLimit
}

// Page is one window of a listing together with the size of the whole listing.
type Page[T any] struct {
	TotalCount int64 `json:"totalCount"`
	Items      []T   `json:"items"`
	Offset     int64 `json:"offset"`
	Limit      int64 `json:"limit"`
}

// Paginate slices items according to GetPaginationParams.
func Paginate[T any](items []T, offset *int, limit *int) Page[T] {
	totalCount := int64(len(items))
	finalOffset, finalLimit := GetPaginationParams(offset, limit)

	start := min(int64(finalOffset), totalCount)
	end := start + min(int64(finalLimit), totalCount-start)

	window := items[start:end]
	if window == nil {
		window = []T{}
	}

	return Page[T]{
		TotalCount: totalCount,
		Items:      window,
		Offset:     int64(finalOffset),
		Limit:      int64(finalLimit),
	}
}
