package api

// Dealer is a retail chain in the catalog API, e.g. {Name: "Netto", ID: "9ba51"}.
type Dealer struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Catalog is a published leaflet for one dealer.
type Catalog struct {
	ID         string `json:"id"`
	DealerID   string `json:"dealer_id"`
	OfferCount int    `json:"offer_count"`
	RunFrom    string `json:"run_from,omitempty"`
	RunTill    string `json:"run_till,omitempty"`

	// Dealer is stamped by the client; the API does not return it.
	Dealer string `json:"dealer"`
}

// Hotspot is one clickable region of a catalog page.
type Hotspot struct {
	Offer *HotspotOffer `json:"offer"`
}

// HotspotOffer is the offer embedded in a hotspot. Every field may be absent.
type HotspotOffer struct {
	ID       string    `json:"id"`
	Heading  *string   `json:"heading"`
	RunFrom  *string   `json:"run_from"`
	RunTill  *string   `json:"run_till"`
	Pricing  *Pricing  `json:"pricing"`
	Quantity *Quantity `json:"quantity"`
}

// Pricing holds the offer price.
type Pricing struct {
	Price    *float64 `json:"price"`
	Currency *string  `json:"currency"`
}

// Quantity describes pack size.
type Quantity struct {
	Size *struct {
		From *float64 `json:"from"`
		To   *float64 `json:"to"`
	} `json:"size"`
	Unit *struct {
		Symbol string `json:"symbol"`
	} `json:"unit"`
}
