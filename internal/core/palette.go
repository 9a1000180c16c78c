package core

import "strings"

type (
	Currency      string
	CategoryIcon  string
	CategoryColor string
)

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	RUP Currency = "RUP"
)

var currencySymbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	JPY: "¥",
	RUP: "₹",
}

// Currencies lists the supported currencies in display order.
func Currencies() []Currency {
	return []Currency{USD, EUR, GBP, JPY, RUP}
}

func (c Currency) IsValid() bool {
	_, ok := currencySymbols[c]
	return ok
}

func (c Currency) Symbol() string {
	return currencySymbols[c]
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

const (
	IconGrocery               CategoryIcon = "GROCERY"
	IconRestaurants           CategoryIcon = "RESTAURANTS"
	IconEntertainment         CategoryIcon = "ENTERTAINMENT"
	IconUtilities             CategoryIcon = "UTILITIES"
	IconVacation              CategoryIcon = "VACATION"
	IconEducation             CategoryIcon = "EDUCATION"
	IconHousing               CategoryIcon = "HOUSING"
	IconTransportation        CategoryIcon = "TRANSPORTATION"
	IconHealth                CategoryIcon = "HEALTH"
	IconFitness               CategoryIcon = "FITNESS"
	IconBeauty                CategoryIcon = "BEAUTY"
	IconPersonalCare          CategoryIcon = "PERSONAL_CARE"
	IconInsurance             CategoryIcon = "INSURANCE"
	IconInvestments           CategoryIcon = "INVESTMENTS"
	IconTaxes                 CategoryIcon = "TAXES"
	IconDebtPayment           CategoryIcon = "DEBT_PAYMENT"
	IconPets                  CategoryIcon = "PETS"
	IconHobbies               CategoryIcon = "HOBBIES"
	IconGifts                 CategoryIcon = "GIFTS"
	IconCharities             CategoryIcon = "CHARITIES"
	IconElectronics           CategoryIcon = "ELECTRONICS"
	IconPhoneBill             CategoryIcon = "PHONE_BILL"
	IconInternetBill          CategoryIcon = "INTERNET_BILL"
	IconSoftwareSubscriptions CategoryIcon = "SOFTWARE_SUBSCRIPTIONS"
	IconChildcare             CategoryIcon = "CHILDCARE"
	IconFamilyExpenses        CategoryIcon = "FAMILY_EXPENSES"
	IconEducationExpenses     CategoryIcon = "EDUCATION_EXPENSES"
	IconHomeImprovement       CategoryIcon = "HOME_IMPROVEMENT"
	IconGardening             CategoryIcon = "GARDENING"
	IconCleaningSupplies      CategoryIcon = "CLEANING_SUPPLIES"
	IconClothing              CategoryIcon = "CLOTHING"
	IconBooks                 CategoryIcon = "BOOKS"
	IconTravelAccessories     CategoryIcon = "TRAVEL_ACCESSORIES"
	IconEvents                CategoryIcon = "EVENTS"
	IconOther                 CategoryIcon = "OTHER"
)

var icons = []CategoryIcon{
	IconGrocery, IconRestaurants, IconEntertainment, IconUtilities, IconVacation,
	IconEducation, IconHousing, IconTransportation, IconHealth, IconFitness,
	IconBeauty, IconPersonalCare, IconInsurance, IconInvestments, IconTaxes,
	IconDebtPayment, IconPets, IconHobbies, IconGifts, IconCharities,
	IconElectronics, IconPhoneBill, IconInternetBill, IconSoftwareSubscriptions,
	IconChildcare, IconFamilyExpenses, IconEducationExpenses, IconHomeImprovement,
	IconGardening, IconCleaningSupplies, IconClothing, IconBooks,
	IconTravelAccessories, IconEvents, IconOther,
}

var iconSet = func() map[CategoryIcon]struct{} {
	m := make(map[CategoryIcon]struct{}, len(icons))
	for _, i := range icons {
		m[i] = struct{}{}
	}
	return m
}()

// Icons returns the fixed icon set.
func Icons() []CategoryIcon {
	return append([]CategoryIcon(nil), icons...)
}

func (i CategoryIcon) IsValid() bool {
	_, ok := iconSet[i]
	return ok
}

func ParseIcon(s string) (CategoryIcon, error) {
	i := CategoryIcon(normalizeEnum(s))
	if !i.IsValid() {
		return "", ErrInvalidIcon
	}
	return i, nil
}

const (
	ColorLightGray        CategoryColor = "LIGHT_GRAY"
	ColorSilver           CategoryColor = "SILVER"
	ColorGray             CategoryColor = "GRAY"
	ColorLightBlue        CategoryColor = "LIGHT_BLUE"
	ColorSkyBlue          CategoryColor = "SKY_BLUE"
	ColorCyan             CategoryColor = "CYAN"
	ColorLightGreen       CategoryColor = "LIGHT_GREEN"
	ColorYellow           CategoryColor = "YELLOW"
	ColorGoldenrod        CategoryColor = "GOLDENROD"
	ColorCornflowerBlue   CategoryColor = "CORNFLOWER_BLUE"
	ColorCoral            CategoryColor = "CORAL"
	ColorPink             CategoryColor = "PINK"
	ColorLavenderBlush    CategoryColor = "LAVENDER_BLUSH"
	ColorMintCream        CategoryColor = "MINT_CREAM"
	ColorAzure            CategoryColor = "AZURE"
	ColorPaleVioletRed    CategoryColor = "PALE_VIOLET_RED"
	ColorLightSalmon      CategoryColor = "LIGHT_SALMON"
	ColorDarkSeaGreen     CategoryColor = "DARK_SEA_GREEN"
	ColorMediumAquamarine CategoryColor = "MEDIUM_AQUAMARINE"
	ColorMediumTurquoise  CategoryColor = "MEDIUM_TURQUOISE"
)

var colorHex = map[CategoryColor]string{
	ColorLightGray:        "#D3D3D3",
	ColorSilver:           "#C0C0C0",
	ColorGray:             "#808080",
	ColorLightBlue:        "#ADD8E6",
	ColorSkyBlue:          "#87CEFA",
	ColorCyan:             "#008B8B",
	ColorLightGreen:       "#90EE90",
	ColorYellow:           "#FFFF00",
	ColorGoldenrod:        "#DAA520",
	ColorCornflowerBlue:   "#6495ED",
	ColorCoral:            "#FF7F50",
	ColorPink:             "#FFC0CB",
	ColorLavenderBlush:    "#9400D3",
	ColorMintCream:        "#00FA9A",
	ColorAzure:            "#007FFF",
	ColorPaleVioletRed:    "#DB7093",
	ColorLightSalmon:      "#FFA07A",
	ColorDarkSeaGreen:     "#8FBC8F",
	ColorMediumAquamarine: "#66CDAA",
	ColorMediumTurquoise:  "#48D1CC",
}

// Colors returns the fixed color set.
func Colors() []CategoryColor {
	return []CategoryColor{
		ColorLightGray, ColorSilver, ColorGray, ColorLightBlue, ColorSkyBlue,
		ColorCyan, ColorLightGreen, ColorYellow, ColorGoldenrod, ColorCornflowerBlue,
		ColorCoral, ColorPink, ColorLavenderBlush, ColorMintCream, ColorAzure,
		ColorPaleVioletRed, ColorLightSalmon, ColorDarkSeaGreen, ColorMediumAquamarine,
		ColorMediumTurquoise,
	}
}

func (c CategoryColor) IsValid() bool {
	_, ok := colorHex[c]
	return ok
}

// Hex returns the #RRGGBB value, or "" for an unknown color.
func (c CategoryColor) Hex() string {
	return colorHex[c]
}

func ParseColor(s string) (CategoryColor, error) {
	c := CategoryColor(normalizeEnum(s))
	if !c.IsValid() {
		return "", ErrInvalidColor
	}
	return c, nil
}

func normalizeEnum(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	return strings.ToUpper(s)
}
