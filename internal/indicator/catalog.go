package indicator

// Defaults returns the built-in indicator catalog. Each call returns a fresh
// copy so callers cannot mutate shared state.
func Defaults() []Spec {
	return []Spec{
		{
			Name:          "child_mortality",
			DisplayName:   "child mortality rate",
			URL:           "https://ourworldindata.org/grapher/child-mortality.csv",
			ValueColumn:   "Child mortality rate",
			GoodDirection: Down,
			// deaths per 100 live births (100, 50, 25, 10 per 1,000)
			Milestones: []float64{10, 5, 2.5, 1},
			MilestoneTemplates: map[float64]string{
				10:  "{country}'s child mortality fell below 100 per 1,000 for the first time",
				5:   "{country}'s child mortality fell below 50 per 1,000 for the first time",
				2.5: "{country}'s child mortality fell below 25 per 1,000 for the first time",
				1:   "{country} achieved under 10 per 1,000 child mortality for the first time",
			},
			Unit: "deaths per 100 live births",
		},
		{
			Name:          "life_expectancy",
			DisplayName:   "life expectancy",
			URL:           "https://ourworldindata.org/grapher/life-expectancy.csv",
			ValueColumn:   "Period life expectancy at birth",
			GoodDirection: Up,
			Milestones:    []float64{60, 70, 75, 80},
			MilestoneTemplates: map[float64]string{
				60: "{country}'s life expectancy rose above 60 years for the first time",
				70: "{country}'s life expectancy rose above 70 years for the first time",
				75: "{country}'s life expectancy rose above 75 years for the first time",
				80: "{country}'s life expectancy rose above 80 years for the first time",
			},
			Unit: "years",
		},
		{
			Name:          "extreme_poverty",
			DisplayName:   "extreme poverty rate",
			URL:           "https://ourworldindata.org/grapher/share-of-population-in-extreme-poverty.csv",
			ValueColumn:   "Share of population in poverty ($3 a day, 2021 prices)",
			GoodDirection: Down,
			Milestones:    []float64{50, 25, 10, 5},
			MilestoneTemplates: map[float64]string{
				50: "{country} reduced extreme poverty below 50% for the first time",
				25: "{country} reduced extreme poverty below 25% for the first time",
				10: "{country} reduced extreme poverty to single digits for the first time",
				5:  "{country} nearly eliminated extreme poverty (below 5%)",
			},
			Unit: "% of population",
		},
		{
			Name:          "literacy",
			DisplayName:   "literacy rate",
			URL:           "https://ourworldindata.org/grapher/cross-country-literacy-rates.csv",
			ValueColumn:   "Literacy rate",
			GoodDirection: Up,
			Milestones:    []float64{50, 75, 90, 95},
			MilestoneTemplates: map[float64]string{
				50: "Majority of {country}'s adults can now read and write",
				75: "{country}'s literacy rate rose above 75% for the first time",
				90: "{country} achieved near-universal literacy (above 90%)",
				95: "{country} achieved 95%+ literacy rate",
			},
			Unit: "% of adults",
		},
		{
			Name:          "electricity_access",
			DisplayName:   "electricity access",
			URL:           "https://ourworldindata.org/grapher/share-of-the-population-with-access-to-electricity.csv",
			ValueColumn:   "Access to electricity (% of population)",
			GoodDirection: Up,
			Milestones:    []float64{50, 75, 90, 99},
			MilestoneTemplates: map[float64]string{
				50: "Majority of {country}'s population now has electricity",
				75: "{country}'s electricity access rose above 75% for the first time",
				90: "{country} achieved near-universal electricity access (above 90%)",
				99: "{country} achieved universal electricity access",
			},
			Unit: "% of population",
		},
	}
}
