package calendar

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T // элементы на текущей странице
	Page     int // номер страницы (с 1)
	PageSize int // количество элементов на странице
	HasNext  bool
	HasPrev  bool
	Total    int // общее количество элементов
}

// Paginate возвращает срез items для указанной страницы и метаданные.
// page нумеруется с 1. При некорректных значениях используются дефолты.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	const defaultPageSize = 20

	total := len(items)

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}

// Offset переводит номер страницы в offset для запросов к БД.
func Offset(page, pageSize int) int {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	return (page - 1) * pageSize
}
