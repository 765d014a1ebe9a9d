package catalog

// Seed categories ship with the storefront and are always present in any
// materialized category set, regardless of local storage state. The ids are
// the well-known backend ids of the default catalog.
const (
	SeedSofaBedsID  = "680cfe0ee4e0274a4cc9a1ea"
	SeedTablesID    = "680cfe0ee4e0274a4cc9a1eb"
	SeedChairsID    = "680cfe0ee4e0274a4cc9a1ec"
	SeedWardrobesID = "680cfe0ee4e0274a4cc9a1ed"
	SeedBedsID      = "680cfe0ee4e0274a4cc9a1ee"
)

var seedCategories = []Entity{
	{ID: SeedSofaBedsID, Name: "sofa-beds", DisplayName: "Sofa Beds", Description: "Convertible sofa beds for small spaces", Seed: true},
	{ID: SeedTablesID, Name: "tables", DisplayName: "Tables", Description: "Dining, coffee and side tables", Seed: true},
	{ID: SeedChairsID, Name: "chairs", DisplayName: "Chairs", Description: "Dining and accent chairs", Seed: true},
	{ID: SeedWardrobesID, Name: "wardrobes", DisplayName: "Wardrobes", Description: "Sliding and hinged wardrobes", Seed: true},
	{ID: SeedBedsID, Name: "beds", DisplayName: "Beds", Description: "Single, double and king beds", Seed: true},
}

// SeedCategories returns a fresh copy of the built-in category set.
func SeedCategories() []Entity {
	out := make([]Entity, len(seedCategories))
	copy(out, seedCategories)
	return out
}

// IsSeedID reports whether id belongs to a seed category.
func IsSeedID(id string) bool {
	for _, s := range seedCategories {
		if s.ID == id {
			return true
		}
	}
	return false
}
