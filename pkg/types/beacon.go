package types

// Default beacon settings seeded on first attach.
const (
	DefaultSellingScope       = ScopeGlobal
	DefaultSellingRadiusMiles = 25.0
)

// BeaconSettings holds the owning beacon's location and selling defaults.
// A store holds exactly one settings record.
type BeaconSettings struct {
	ID string `json:"id"`

	Location

	DefaultSellingScope       string  `json:"defaultSellingScope"`
	DefaultSellingRadiusMiles float64 `json:"defaultSellingRadiusMiles"`
}

// DHTStatus reports the beacon's connection to the peer network.
type DHTStatus struct {
	Connected bool `json:"connected"`
	Peers     int  `json:"peers"`
}

// BeaconInfo summarizes a running beacon.
type BeaconInfo struct {
	ID         string    `json:"id"`
	Version    string    `json:"version"`
	RefCount   int       `json:"refCount"`
	OfferCount int       `json:"offerCount"`
	Uptime     float64   `json:"uptime"` // Seconds.
	DHT        DHTStatus `json:"dht"`
}
