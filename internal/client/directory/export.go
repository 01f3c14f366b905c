package directory

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/models"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var csvHeader = []string{"id", "name", "domain", "category", "country", "rating", "review_count", "verified"}

// Export writes brands to w in the given format.
func Export(w io.Writer, brands []models.Brand, format Format) error {
	switch Format(strings.ToLower(string(format))) {
	case FormatCSV:
		return writeCSV(w, brands)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if brands == nil {
			brands = []models.Brand{}
		}
		return enc.Encode(brands)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeCSV(w io.Writer, brands []models.Brand) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range brands {
		rec := []string{
			b.ID,
			b.Name,
			b.Domain,
			b.Category,
			b.Country,
			strconv.FormatFloat(b.Rating, 'f', -1, 64),
			strconv.Itoa(b.ReviewCount),
			strconv.FormatBool(b.Verified),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
