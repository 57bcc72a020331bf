package model

// CatalogItem is a read-only snapshot of a donation as reported by the
// external catalog.  The hold engine only ever looks at ID.
type CatalogItem struct {
	ID           string  `json:"id"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Quantity     string  `json:"quantity"`
	DonorName    string  `json:"donor_name"`
	DonorContact string  `json:"donor_contact"`
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lng"`
	Address      string  `json:"address"`
	ExpiresAt    string  `json:"expires_at"`
}

// Area describes the search window passed to the catalog.  RadiusMiles is
// forwarded as-is; the built-in fixture ignores it.
type Area struct {
	Latitude    float64
	Longitude   float64
	RadiusMiles float64
}

// DefaultRadiusMiles is used when a caller does not specify a radius.
const DefaultRadiusMiles = 50
