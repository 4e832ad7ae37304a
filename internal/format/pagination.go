package format

import "strconv"

// Ellipsis marks a gap in a pagination strip.
const Ellipsis = "..."

// GeneratePagination returns the page labels to show for currentPage of totalPages.
// Up to seven pages are listed in full; longer ranges collapse into ellipses.
func GeneratePagination(currentPage, totalPages int) []string {
	if totalPages <= 0 {
		return []string{}
	}
	if totalPages <= 7 {
		return pages(1, totalPages)
	}
	if currentPage <= 3 {
		return append(pages(1, 3), Ellipsis, itoa(totalPages-1), itoa(totalPages))
	}
	if currentPage >= totalPages-2 {
		return append([]string{"1", "2", Ellipsis}, pages(totalPages-2, totalPages)...)
	}
	return []string{
		"1", Ellipsis,
		itoa(currentPage - 1), itoa(currentPage), itoa(currentPage + 1),
		Ellipsis, itoa(totalPages),
	}
}

func pages(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, itoa(i))
	}
	return out
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
