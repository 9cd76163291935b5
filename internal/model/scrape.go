package model

// Column names every scrape run file must carry.
const (
	ColumnDate = "date"
	ColumnID   = "id"
)

// ScrapeRecord is one row of a scrape run.
// Only the columns the pipeline depends on are retained.
type ScrapeRecord struct {
	// Date is the tweet date exactly as the scrape tool wrote it.
	Date string

	// ID is the tweet identifier.
	ID ID
}

// ScrapeTable is an ordered set of scrape records.
type ScrapeTable []ScrapeRecord

// IDs returns the identifiers of the table in row order.
func (t ScrapeTable) IDs() []ID {
	ids := make([]ID, len(t))
	for i, r := range t {
		ids[i] = r.ID
	}
	return ids
}
