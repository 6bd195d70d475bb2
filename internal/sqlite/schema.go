package sqlite

// Schema DDL. Every table has a JSONL file of the same name in DataDir.
const (
	createRefs = `CREATE TABLE refs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    subcategory TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    sku TEXT NOT NULL DEFAULT '',
    listing_status TEXT NOT NULL,
    quantity INTEGER NOT NULL DEFAULT 1,
    reffo_synced INTEGER NOT NULL DEFAULT 0,
    reffo_ref_id TEXT NOT NULL DEFAULT '',
    location_lat REAL,
    location_lng REAL,
    location_address TEXT NOT NULL DEFAULT '',
    location_city TEXT NOT NULL DEFAULT '',
    location_state TEXT NOT NULL DEFAULT '',
    location_zip TEXT NOT NULL DEFAULT '',
    location_country TEXT NOT NULL DEFAULT '',
    selling_scope TEXT NOT NULL DEFAULT '',
    selling_radius_miles REAL,
    attributes TEXT,
    condition TEXT NOT NULL DEFAULT '',
    rental_terms TEXT NOT NULL DEFAULT '',
    rental_deposit REAL,
    rental_duration INTEGER,
    rental_duration_unit TEXT NOT NULL DEFAULT '',
    beacon_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createOffers = `CREATE TABLE offers (
    id TEXT PRIMARY KEY,
    ref_id TEXT NOT NULL,
    price REAL NOT NULL,
    price_currency TEXT NOT NULL,
    status TEXT NOT NULL,
    seller_id TEXT NOT NULL,
    location TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (ref_id) REFERENCES refs(id) ON DELETE CASCADE
);`

	// Negotiations outlive refs and may name a ref held by another beacon,
	// so ref_id is not a foreign key.
	createNegotiations = `CREATE TABLE negotiations (
    id TEXT PRIMARY KEY,
    ref_id TEXT NOT NULL,
    ref_name TEXT NOT NULL DEFAULT '',
    buyer_beacon_id TEXT NOT NULL DEFAULT '',
    seller_beacon_id TEXT NOT NULL DEFAULT '',
    price REAL NOT NULL,
    price_currency TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    role TEXT NOT NULL,
    counter_price REAL,
    countered_by TEXT NOT NULL DEFAULT '',
    response_message TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createMedia = `CREATE TABLE media (
    id TEXT PRIMARY KEY,
    ref_id TEXT NOT NULL,
    media_type TEXT NOT NULL,
    file_path TEXT NOT NULL,
    mime_type TEXT NOT NULL DEFAULT '',
    file_size INTEGER NOT NULL DEFAULT 0,
    sort_order INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    FOREIGN KEY (ref_id) REFERENCES refs(id) ON DELETE CASCADE
);`

	createSettings = `CREATE TABLE settings (
    id TEXT PRIMARY KEY,
    location_lat REAL,
    location_lng REAL,
    location_address TEXT NOT NULL DEFAULT '',
    location_city TEXT NOT NULL DEFAULT '',
    location_state TEXT NOT NULL DEFAULT '',
    location_zip TEXT NOT NULL DEFAULT '',
    location_country TEXT NOT NULL DEFAULT '',
    default_selling_scope TEXT NOT NULL,
    default_selling_radius_miles REAL NOT NULL
);`
)

// Index DDL for the filters the tables accept.
const (
	idxRefsCategory       = `CREATE INDEX idx_refs_category ON refs(category, subcategory);`
	idxRefsListingStatus  = `CREATE INDEX idx_refs_listing_status ON refs(listing_status);`
	idxOffersRef          = `CREATE INDEX idx_offers_ref ON offers(ref_id);`
	idxOffersStatus       = `CREATE INDEX idx_offers_status ON offers(status);`
	idxNegotiationsRef    = `CREATE INDEX idx_negotiations_ref ON negotiations(ref_id);`
	idxNegotiationsStatus = `CREATE INDEX idx_negotiations_status ON negotiations(status);`
	idxMediaRefOrder      = `CREATE INDEX idx_media_ref_order ON media(ref_id, sort_order);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createRefs,
	createOffers,
	createNegotiations,
	createMedia,
	createSettings,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxRefsCategory,
	idxRefsListingStatus,
	idxOffersRef,
	idxOffersStatus,
	idxNegotiationsRef,
	idxNegotiationsStatus,
	idxMediaRefOrder,
}

// jsonColumns are TEXT columns holding JSON documents. They are written to
// JSONL as nested JSON rather than as escaped strings.
var jsonColumns = map[string]bool{
	"attributes": true,
}
