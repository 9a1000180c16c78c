package core

// DefaultCategories returns the categories inserted the first time a budget
// is recorded on an empty ledger.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Grocery", Icon: IconGrocery, Color: ColorPink},
		{Name: "Restaurants", Icon: IconRestaurants, Color: ColorCoral},
		{Name: "Entertainment", Icon: IconEntertainment, Color: ColorLavenderBlush},
		{Name: "Utilities", Icon: IconUtilities, Color: ColorMintCream},
		{Name: "Vacation", Icon: IconVacation, Color: ColorAzure},
		{Name: "Education", Icon: IconEducation, Color: ColorPaleVioletRed},
		{Name: "Housing", Icon: IconHousing, Color: ColorLightSalmon},
		{Name: "Transportation", Icon: IconTransportation, Color: ColorDarkSeaGreen},
		{Name: "Health", Icon: IconHealth, Color: ColorMediumAquamarine},
		{Name: "Fitness", Icon: IconFitness, Color: ColorMediumTurquoise},
	}
}
