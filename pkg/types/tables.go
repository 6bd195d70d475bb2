package types

// Standard table names for Store.GetTable.
const (
	TableRefs         = "refs"
	TableOffers       = "offers"
	TableNegotiations = "negotiations"
	TableMedia        = "media"
	TableSettings     = "settings"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableRefs,
	TableOffers,
	TableNegotiations,
	TableMedia,
	TableSettings,
}
