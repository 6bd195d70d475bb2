package schema

// Unit codes (UN/CEFACT Common Code) used in QuantitativeValue nodes.
const (
	unitStatuteMile = "SMI"
	unitSquareFoot  = "FTK"
	unitInch        = "INH"
)

var commonTraits = []Trait{TraitPriceable, TraitConditional, TraitValueable, TraitSerialized, TraitLocationBound}

// ─── Vehicles | Cars ───

type carSchema struct{ descriptor }

func newCarSchema() *carSchema {
	return &carSchema{descriptor{
		schemaOrgType:    "Car",
		traits:           commonTraits,
		conditionOptions: []string{"excellent", "good", "fair", "poor", "parts_only"},
		attributes: []AttributeField{
			{Key: "year", Label: "Year", Type: FieldNumber, Placeholder: "2020", SchemaOrg: "vehicleModelDate", Summary: true},
			{Key: "make", Label: "Make", Type: FieldText, Placeholder: "Toyota", SchemaOrg: "brand", Summary: true},
			{Key: "model", Label: "Model", Type: FieldText, Placeholder: "Camry", SchemaOrg: "model", Summary: true},
			{Key: "trim", Label: "Trim", Type: FieldText, Placeholder: "XLE"},
			{Key: "mileage", Label: "Mileage", Type: FieldNumber, Placeholder: "45000", SchemaOrg: "mileageFromOdometer", Unit: "mi", Summary: true},
			{Key: "transmission", Label: "Transmission", Type: FieldSelect, Options: []string{"automatic", "manual", "cvt"}, SchemaOrg: "vehicleTransmission"},
			{Key: "body_type", Label: "Body Type", Type: FieldSelect, Options: []string{"sedan", "suv", "truck", "coupe", "convertible", "van", "wagon", "hatchback"}, SchemaOrg: "bodyType"},
			{Key: "title_status", Label: "Title Status", Type: FieldSelect, Options: []string{"clean", "salvage", "rebuilt", "lemon"}, Summary: true},
			{Key: "vin", Label: "VIN", Type: FieldText, Placeholder: "1HGCM82633A004352", SchemaOrg: "vehicleIdentificationNumber"},
			{Key: "accidents", Label: "Known Accidents", Type: FieldNumber, Placeholder: "0", SchemaOrg: "knownVehicleDamages"},
			{Key: "service_history", Label: "Service History", Type: FieldSelect, Options: []string{"full", "partial", "none", "unknown"}},
		},
	}}
}

func (s *carSchema) BuildLinkedData(attrs Attributes) LinkedData {
	ld := s.base()
	setStringIf(ld, "vehicleModelDate", attrs, "year")
	if v := attrs["make"]; truthy(v) {
		ld["brand"] = named("Brand", v)
	}
	setIf(ld, "model", attrs, "model")
	if v := attrs["mileage"]; truthy(v) {
		ld["mileageFromOdometer"] = quantity(v, unitStatuteMile)
	}
	setIf(ld, "vehicleTransmission", attrs, "transmission")
	setIf(ld, "bodyType", attrs, "body_type")
	setIf(ld, "vehicleIdentificationNumber", attrs, "vin")
	setStringIf(ld, "knownVehicleDamages", attrs, "accidents")
	return ld
}

// ─── Vehicles | Boats ───

type boatSchema struct{ descriptor }

func newBoatSchema() *boatSchema {
	return &boatSchema{descriptor{
		schemaOrgType:    "Vehicle",
		additionalType:   "Boat",
		traits:           commonTraits,
		conditionOptions: []string{"excellent", "good", "fair", "project", "parts"},
		attributes: []AttributeField{
			{Key: "year", Label: "Year", Type: FieldNumber, Placeholder: "2018", SchemaOrg: "productionDate", Summary: true},
			{Key: "manufacturer", Label: "Manufacturer", Type: FieldText, Placeholder: "Boston Whaler", SchemaOrg: "brand", Summary: true},
			{Key: "model", Label: "Model", Type: FieldText, Placeholder: "Montauk 170", SchemaOrg: "model", Summary: true},
			{Key: "length_feet", Label: "Length (ft)", Type: FieldNumber, Placeholder: "17", SchemaOrg: "length"},
			{Key: "boat_type", Label: "Boat Type", Type: FieldSelect, Options: []string{"center_console", "bowrider", "pontoon", "sailboat", "cabin_cruiser", "fishing", "kayak", "jet_ski", "other"}, SchemaOrg: "bodyType"},
			{Key: "hull_material", Label: "Hull Material", Type: FieldSelect, Options: []string{"fiberglass", "aluminum", "wood", "inflatable", "composite"}},
			{Key: "engine_hours", Label: "Engine Hours", Type: FieldNumber, Placeholder: "350", SchemaOrg: "mileageFromOdometer", Summary: true},
			{Key: "engine_make", Label: "Engine Make", Type: FieldText, Placeholder: "Mercury"},
			{Key: "fuel_type", Label: "Fuel Type", Type: FieldSelect, Options: []string{"gasoline", "diesel", "electric", "none"}, SchemaOrg: "fuelType"},
			{Key: "hin", Label: "HIN", Type: FieldText, Placeholder: "Hull ID Number", SchemaOrg: "vehicleIdentificationNumber"},
			{Key: "trailer_included", Label: "Trailer Included", Type: FieldBoolean},
		},
	}}
}

func (s *boatSchema) BuildLinkedData(attrs Attributes) LinkedData {
	ld := s.base()
	setStringIf(ld, "productionDate", attrs, "year")
	if v := attrs["manufacturer"]; truthy(v) {
		ld["brand"] = named("Brand", v)
	}
	setIf(ld, "model", attrs, "model")
	setIf(ld, "bodyType", attrs, "boat_type")
	// Engine hours have no unit code; they go out as free text.
	if v := attrs["engine_hours"]; truthy(v) {
		ld["mileageFromOdometer"] = LinkedData{"@type": "QuantitativeValue", "value": v, "unitText": "hours"}
	}
	setIf(ld, "fuelType", attrs, "fuel_type")
	setIf(ld, "vehicleIdentificationNumber", attrs, "hin")
	return ld
}

// ─── Housing ───

type housingSchema struct{ descriptor }

// Housing records are typed by property_type: condos are Apartments, every
// other property type keeps the schema's base type.
const condoType = "Apartment"

func newHousingSchema() *housingSchema {
	return &housingSchema{descriptor{
		schemaOrgType:    "SingleFamilyResidence",
		traits:           commonTraits,
		conditionOptions: []string{"move_in_ready", "needs_cosmetic", "needs_repair", "teardown"},
		attributes: []AttributeField{
			{Key: "property_type", Label: "Property Type", Type: FieldSelect, Options: []string{"single_family", "condo", "townhouse", "multi_family", "land", "mobile_home"}, SchemaOrg: "accommodationCategory", Summary: true},
			{Key: "beds", Label: "Bedrooms", Type: FieldNumber, Placeholder: "3", SchemaOrg: "numberOfBedrooms", Summary: true},
			{Key: "baths", Label: "Bathrooms", Type: FieldNumber, Placeholder: "2", SchemaOrg: "numberOfBathroomsTotal", Summary: true},
			{Key: "sqft", Label: "Sq. Ft.", Type: FieldNumber, Placeholder: "1800", SchemaOrg: "floorSize", Unit: "sqft", Summary: true},
			{Key: "lot_size_acres", Label: "Lot Size (acres)", Type: FieldNumber, Placeholder: "0.25"},
			{Key: "year_built", Label: "Year Built", Type: FieldNumber, Placeholder: "1995", SchemaOrg: "yearBuilt"},
			{Key: "stories", Label: "Stories", Type: FieldNumber, Placeholder: "2"},
			{Key: "hoa_monthly", Label: "HOA Monthly ($)", Type: FieldNumber, Placeholder: "250"},
			{Key: "property_tax_annual", Label: "Annual Property Tax ($)", Type: FieldNumber, Placeholder: "3500"},
			{Key: "parcel_id", Label: "Parcel ID", Type: FieldText, Placeholder: "Tax parcel number"},
		},
	}}
}

func (s *housingSchema) BuildLinkedData(attrs Attributes) LinkedData {
	ld := s.base()
	if pt, ok := attrs["property_type"].(string); ok && pt == "condo" {
		ld["@type"] = condoType
	}
	setIf(ld, "accommodationCategory", attrs, "property_type")
	setIf(ld, "numberOfBedrooms", attrs, "beds")
	setIf(ld, "numberOfBathroomsTotal", attrs, "baths")
	if v := attrs["sqft"]; truthy(v) {
		ld["floorSize"] = quantity(v, unitSquareFoot)
	}
	setStringIf(ld, "yearBuilt", attrs, "year_built")
	return ld
}

// ─── Electronics | Phones & Tablets ───

type phoneSchema struct{ descriptor }

func newPhoneSchema() *phoneSchema {
	return &phoneSchema{descriptor{
		schemaOrgType:    "IndividualProduct",
		additionalType:   "Smartphone",
		traits:           []Trait{TraitPriceable, TraitConditional, TraitValueable, TraitSerialized},
		conditionOptions: []string{"new_sealed", "like_new", "excellent", "good", "fair", "poor", "for_parts"},
		attributes: []AttributeField{
			{Key: "manufacturer", Label: "Brand", Type: FieldText, Placeholder: "Apple", SchemaOrg: "brand", Summary: true},
			{Key: "model", Label: "Model", Type: FieldText, Placeholder: "iPhone 15 Pro", SchemaOrg: "model", Summary: true},
			{Key: "storage_gb", Label: "Storage (GB)", Type: FieldNumber, Placeholder: "256", Summary: true},
			{Key: "network", Label: "Network", Type: FieldSelect, Options: []string{"5G", "4G LTE", "3G", "WiFi only"}},
			{Key: "carrier_locked", Label: "Carrier Locked", Type: FieldSelect, Options: []string{"unlocked", "AT&T", "T-Mobile", "Verizon", "other"}},
			{Key: "battery_health_percent", Label: "Battery Health (%)", Type: FieldNumber, Placeholder: "92"},
			{Key: "imei", Label: "IMEI", Type: FieldText, Placeholder: "Serial number", SchemaOrg: "serialNumber"},
			{Key: "color", Label: "Color", Type: FieldText, Placeholder: "Space Black", SchemaOrg: "color"},
			{Key: "original_box", Label: "Original Box", Type: FieldBoolean},
		},
	}}
}

// phoneProperties lists the attributes emitted as PropertyValue entries, in
// output order.
var phoneProperties = []struct {
	key, name, unitText string
}{
	{"storage_gb", "storageGB", ""},
	{"network", "network", ""},
	{"carrier_locked", "carrierLocked", ""},
	{"battery_health_percent", "batteryHealth", "%"},
}

func (s *phoneSchema) BuildLinkedData(attrs Attributes) LinkedData {
	ld := s.base()
	if v := attrs["manufacturer"]; truthy(v) {
		ld["brand"] = named("Brand", v)
	}
	setIf(ld, "model", attrs, "model")
	setIf(ld, "color", attrs, "color")
	setIf(ld, "serialNumber", attrs, "imei")

	var props []LinkedData
	for _, p := range phoneProperties {
		v := attrs[p.key]
		if !truthy(v) {
			continue
		}
		pv := LinkedData{"@type": "PropertyValue", "name": p.name, "value": v}
		if p.unitText != "" {
			pv["unitText"] = p.unitText
		}
		props = append(props, pv)
	}
	if len(props) > 0 {
		ld["additionalProperty"] = props
	}
	return ld
}

// ─── Home & Garden | Furniture ───

type furnitureSchema struct{ descriptor }

func newFurnitureSchema() *furnitureSchema {
	return &furnitureSchema{descriptor{
		schemaOrgType:    "Product",
		additionalType:   "Furniture",
		traits:           []Trait{TraitPriceable, TraitConditional, TraitLocationBound},
		conditionOptions: []string{"like_new", "good", "fair", "well_loved", "needs_reupholstery"},
		attributes: []AttributeField{
			{Key: "furniture_type", Label: "Type", Type: FieldSelect, Options: []string{"sofa", "chair", "table", "desk", "bed", "dresser", "bookshelf", "cabinet", "outdoor", "other"}, Summary: true},
			{Key: "material", Label: "Material", Type: FieldSelect, Options: []string{"wood", "metal", "fabric", "leather", "glass", "plastic", "mixed"}, SchemaOrg: "material", Summary: true},
			{Key: "seating_capacity", Label: "Seating Capacity", Type: FieldNumber, Placeholder: "3"},
			{Key: "color", Label: "Color", Type: FieldText, Placeholder: "Charcoal", SchemaOrg: "color"},
			{Key: "width", Label: "Width (in)", Type: FieldNumber, Placeholder: "84", SchemaOrg: "width"},
			{Key: "depth", Label: "Depth (in)", Type: FieldNumber, Placeholder: "38", SchemaOrg: "depth"},
			{Key: "height", Label: "Height (in)", Type: FieldNumber, Placeholder: "34", SchemaOrg: "height"},
			{Key: "pet_free_home", Label: "Pet-Free Home", Type: FieldBoolean},
			{Key: "smoke_free_home", Label: "Smoke-Free Home", Type: FieldBoolean},
		},
	}}
}

func (s *furnitureSchema) BuildLinkedData(attrs Attributes) LinkedData {
	ld := s.base()
	setIf(ld, "material", attrs, "material")
	setIf(ld, "color", attrs, "color")
	for _, dim := range []string{"width", "depth", "height"} {
		if v := attrs[dim]; truthy(v) {
			ld[dim] = quantity(v, unitInch)
		}
	}
	return ld
}

// ─── Collectibles | Art ───

type artSchema struct{ descriptor }

func newArtSchema() *artSchema {
	return &artSchema{descriptor{
		schemaOrgType:    "VisualArtwork",
		traits:           []Trait{TraitPriceable, TraitConditional, TraitValueable},
		conditionOptions: []string{"mint", "excellent", "good", "fair", "damaged", "needs_restoration"},
		attributes: []AttributeField{
			{Key: "artist", Label: "Artist", Type: FieldText, Placeholder: "Artist name", SchemaOrg: "artist", Summary: true},
			{Key: "title", Label: "Title", Type: FieldText, Placeholder: "Artwork title", SchemaOrg: "name", Summary: true},
			{Key: "medium", Label: "Medium", Type: FieldSelect, Options: []string{"oil", "acrylic", "watercolor", "pastel", "charcoal", "ink", "mixed_media", "digital", "photography", "sculpture", "print", "other"}, SchemaOrg: "artMedium", Summary: true},
			{Key: "year_created", Label: "Year Created", Type: FieldNumber, Placeholder: "2023", SchemaOrg: "dateCreated"},
			{Key: "dimensions", Label: "Dimensions", Type: FieldText, Placeholder: `24" x 36"`},
			{Key: "edition_number", Label: "Edition", Type: FieldText, Placeholder: "3/50", SchemaOrg: "artEdition"},
			{Key: "certificate_of_authenticity", Label: "Certificate of Authenticity", Type: FieldBoolean},
			{Key: "framed", Label: "Framed", Type: FieldBoolean},
		},
	}}
}

// BuildLinkedData maps the artwork title to name. A listing name passed to
// the assembler replaces it.
func (s *artSchema) BuildLinkedData(attrs Attributes) LinkedData {
	ld := s.base()
	if v := attrs["artist"]; truthy(v) {
		ld["artist"] = named("Person", v)
	}
	setIf(ld, "name", attrs, "title")
	setIf(ld, "artMedium", attrs, "medium")
	setStringIf(ld, "dateCreated", attrs, "year_created")
	setIf(ld, "artEdition", attrs, "edition_number")
	return ld
}

// ─── Other | Services (dining certificates and vouchers) ───

type diningSchema struct{ descriptor }

func newDiningSchema() *diningSchema {
	return &diningSchema{descriptor{
		schemaOrgType:  "Offer",
		additionalType: "FoodEstablishment",
		traits:         []Trait{TraitPriceable, TraitConsumable, TraitTimeBounded, TraitLocationBound},
		attributes: []AttributeField{
			{Key: "restaurant_name", Label: "Restaurant Name", Type: FieldText, Placeholder: "Joe's Bistro", Summary: true},
			{Key: "cuisine_type", Label: "Cuisine", Type: FieldText, Placeholder: "Italian", SchemaOrg: "servesCuisine", Summary: true},
			{Key: "offer_type", Label: "Offer Type", Type: FieldSelect, Options: []string{"gift_card", "coupon", "voucher", "discount"}, Summary: true},
			{Key: "offer_value", Label: "Face Value ($)", Type: FieldNumber, Placeholder: "50"},
			{Key: "min_purchase", Label: "Min. Purchase ($)", Type: FieldNumber, Placeholder: "0"},
			{Key: "valid_days", Label: "Valid Days", Type: FieldText, Placeholder: "Mon-Fri"},
			{Key: "valid_hours", Label: "Valid Hours", Type: FieldText, Placeholder: "11am-3pm"},
			{Key: "expires_at", Label: "Expiration Date", Type: FieldText, Placeholder: "YYYY-MM-DD", SchemaOrg: "validThrough"},
		},
	}}
}

// BuildLinkedData emits only the base type; the additional type describes
// the establishment, which appears as offeredBy when a restaurant is named.
// Cuisine is recorded only alongside a restaurant.
func (s *diningSchema) BuildLinkedData(attrs Attributes) LinkedData {
	ld := LinkedData{"@type": s.schemaOrgType}
	if v := attrs["restaurant_name"]; truthy(v) {
		by := named("FoodEstablishment", v)
		setIf(by, "servesCuisine", attrs, "cuisine_type")
		ld["offeredBy"] = by
	}
	setIf(ld, "validThrough", attrs, "expires_at")
	return ld
}

// ─── Default ───

type defaultSchema struct{ descriptor }

func newDefaultSchema() *defaultSchema {
	return &defaultSchema{descriptor{
		schemaOrgType:    "Product",
		traits:           []Trait{TraitPriceable},
		conditionOptions: []string{"new", "like_new", "good", "fair", "poor"},
	}}
}

// BuildLinkedData ignores attrs.
func (s *defaultSchema) BuildLinkedData(Attributes) LinkedData {
	return s.base()
}
