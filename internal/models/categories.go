package models

// CategoryDefault holds the stock summary and cover image applied when a
// post in that category is created without one.
type CategoryDefault struct {
	Name    string
	Summary string
	Image   string
}

// CategoryDefaults is the fixed, ordered defaults table. Lookup is
// first-match by name; a category outside the table resolves to nothing and
// the post fields stay unset. Categories are not validated against it.
var CategoryDefaults = []CategoryDefault{
	{
		Name:    "Business",
		Summary: "Insights into markets, companies, and strategies shaping the global economy.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399515/business_zzx4wx.jpg",
	},
	{
		Name:    "Health",
		Summary: "Tips and information to maintain physical and mental well-being.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399517/health_f6jysd.jpg",
	},
	{
		Name:    "Lifestyle",
		Summary: "Ideas and trends to enhance everyday living and personal style.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399516/lifestyle_d3ofgl.jpg",
	},
	{
		Name:    "Technology",
		Summary: "Updates on innovations, gadgets, and the digital world.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399518/technology_z3uzsg.jpg",
	},
	{
		Name:    "Sports",
		Summary: "News, analysis, and stories from the world of athletics.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1753523965/sports_g1v2l6.jpg",
	},
	{
		Name:    "Education",
		Summary: "Resources and insights for learning and personal development.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399516/education_jyfggg.jpg",
	},
	{
		Name:    "Food",
		Summary: "Recipes, culinary trends, and everything delicious.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399518/food1_moanwe.jpg",
	},
	{
		Name:    "Entertainment",
		Summary: "Movies, music, TV, and celebrity updates.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1753523965/entertainment_tkjypc.jpg",
	},
	{
		Name:    "Travel",
		Summary: "Guides and inspiration for exploring new destinations.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399516/travel_r57pso.jpg",
	},
	{
		Name:    "Finance",
		Summary: "Advice and news on money management and investments.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399516/finance_cvjstx.jpg",
	},
	{
		Name:    "Fitness",
		Summary: "Workouts, routines, and tips for a healthier lifestyle.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399516/fitness_kezxra.jpg",
	},
	{
		Name:    "Environment",
		Summary: "Information and actions to protect our planet.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1752399516/environment_lvrght.jpg",
	},
	{
		Name:    "General",
		Summary: "Miscellaneous topics and general updates.",
		Image:   "https://res.cloudinary.com/dlovcfdar/image/upload/v1753523965/general_nzk5kz.jpg",
	},
}

// LookupCategoryDefault returns the first defaults entry matching name.
func LookupCategoryDefault(name string) (CategoryDefault, bool) {
	for _, d := range CategoryDefaults {
		if d.Name == name {
			return d, true
		}
	}
	return CategoryDefault{}, false
}
