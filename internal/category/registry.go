package category

// SubcategoryDefinition is a static registry entry used to build the
// classification prompt's option list.
type SubcategoryDefinition struct {
	ID           string
	Name         string
	Description  string
	ExampleTerms []string
}

// CategoryDefinition is a static registry entry for a top-level category.
type CategoryDefinition struct {
	ID            string
	Name          string
	Description   string
	ExampleTerms  []string
	Subcategories []SubcategoryDefinition
}

// DefaultCategory is substituted whenever classification fails or returns an
// unrecognized id.
const DefaultCategory = "general"

// Registry enumerates every category the classifier may pick from. The table
// is fixed at startup; per-category prompt/config overrides live in
// modules.go.
var Registry = []CategoryDefinition{
	{
		ID:           "food",
		Name:         "Food",
		Description:  "Processed and packaged food products",
		ExampleTerms: []string{"cookie", "biscuit", "snack", "bread", "chocolate", "cereal"},
		Subcategories: []SubcategoryDefinition{
			{ID: "biscuits-cookies", Name: "Biscuits & Cookies", Description: "Baked biscuits, cookies, wafers", ExampleTerms: []string{"oreo", "cookie", "cracker", "wafer"}},
			{ID: "confectionery", Name: "Confectionery", Description: "Candy, chocolate, gum", ExampleTerms: []string{"candy", "chocolate bar", "toffee"}},
			{ID: "snacks", Name: "Snacks", Description: "Extruded and fried snacks", ExampleTerms: []string{"chips", "crisps", "namkeen"}},
		},
	},
	{
		ID:           "beverages",
		Name:         "Beverages",
		Description:  "Bottled and canned drinks",
		ExampleTerms: []string{"juice", "soda", "water", "energy drink"},
		Subcategories: []SubcategoryDefinition{
			{ID: "carbonated", Name: "Carbonated Drinks", Description: "Sparkling soft drinks", ExampleTerms: []string{"cola", "soda", "sparkling"}},
			{ID: "juices", Name: "Juices", Description: "Fruit and vegetable juices", ExampleTerms: []string{"orange juice", "nectar"}},
		},
	},
	{
		ID:           "personal-care",
		Name:         "Personal Care",
		Description:  "Cosmetics and hygiene products",
		ExampleTerms: []string{"shampoo", "soap", "lotion", "toothpaste"},
		Subcategories: []SubcategoryDefinition{
			{ID: "hair-care", Name: "Hair Care", Description: "Shampoos, conditioners", ExampleTerms: []string{"shampoo", "conditioner"}},
			{ID: "skin-care", Name: "Skin Care", Description: "Creams, lotions, cleansers", ExampleTerms: []string{"moisturizer", "face wash"}},
		},
	},
	{
		ID:           "home-care",
		Name:         "Home Care",
		Description:  "Household cleaning products",
		ExampleTerms: []string{"detergent", "dish soap", "cleaner"},
	},
	{
		ID:           "electronics",
		Name:         "Electronics",
		Description:  "Consumer electronic devices and accessories",
		ExampleTerms: []string{"charger", "cable", "earbuds", "power bank"},
	},
	{
		ID:           "apparel",
		Name:         "Apparel & Textiles",
		Description:  "Garments and textile goods",
		ExampleTerms: []string{"t-shirt", "jeans", "towel", "socks"},
	},
	{
		ID:           DefaultCategory,
		Name:         "General",
		Description:  "Products that fit no other category",
		ExampleTerms: []string{},
	},
}

// Lookup returns the registry entry for a category id.
func Lookup(id string) (CategoryDefinition, bool) {
	for _, def := range Registry {
		if def.ID == id {
			return def, true
		}
	}
	return CategoryDefinition{}, false
}

// LookupSub reports whether subID is a registered subcategory of catID.
func LookupSub(catID, subID string) bool {
	def, ok := Lookup(catID)
	if !ok {
		return false
	}
	for _, sub := range def.Subcategories {
		if sub.ID == subID {
			return true
		}
	}
	return false
}
