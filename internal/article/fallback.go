package article

// 未配置新闻源凭据时展示的内置内容。

var fallbackBreaking = []string{
	"Global Markets Rally as Tech Stocks Hit Record Highs",
	"New Climate Accord Signed by 150 Nations in Historic Summit",
	"Breakthrough in Quantum Computing Announced by Researchers",
	"SpaceX Successfully Launches First Commercial Mars Mission",
	"Artificial Intelligence Regulation Bill Passes Senate",
}

var fallbackFeatured = []Article{
	{
		ID:       "1",
		Title:    "The Architecture of Tomorrow: Sustainable Cities",
		Excerpt:  "How urban planners are reimagining metropolitan spaces to combat climate change while improving quality of life for millions of residents.",
		Category: "Design",
		Author:   "Elena Fisher",
		Date:     "Oct 24, 2023",
		ImageURL: "https://images.unsplash.com/photo-1486325212027-8081e485255e?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "8 min read",
		URL:      "#",
		IsLarge:  true,
	},
	{
		ID:       "2",
		Title:    "Inside the Race to Build the First Fusion Power Plant",
		Excerpt:  "Private labs and national programmes are converging on a decade-long sprint toward commercial fusion energy.",
		Category: "Science",
		Author:   "Marcus Chen",
		Date:     "Oct 23, 2023",
		ImageURL: "https://images.unsplash.com/photo-1581093458791-9d42e3c7e117?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "6 min read",
		URL:      "#",
	},
	{
		ID:       "3",
		Title:    "The Quiet Revival of Independent Bookstores",
		Excerpt:  "Community-driven shops are thriving where chains retreated.",
		Category: "Culture",
		Author:   "Sofia Alvarez",
		Date:     "Oct 22, 2023",
		ImageURL: "https://images.unsplash.com/photo-1507842217343-583bb7270b66?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "5 min read",
		URL:      "#",
	},
	{
		ID:       "4",
		Title:    "Central Banks Signal a Pause on Rate Hikes",
		Excerpt:  "Policymakers weigh cooling inflation against slowing growth.",
		Category: "Business",
		Author:   "James Okafor",
		Date:     "Oct 21, 2023",
		ImageURL: "https://images.unsplash.com/photo-1611974789855-9c2a0a7236a3?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "4 min read",
		URL:      "#",
	},
	{
		ID:       "5",
		Title:    "Minimalism: A Design Philosophy",
		Excerpt:  "Less is more, but better.",
		Category: "Style",
		Author:   "Anna Wintour",
		Date:     "Oct 20, 2023",
		ImageURL: "https://images.unsplash.com/photo-1494438639946-1ebd1d20bf85?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "3 min read",
		URL:      "#",
	},
}

var fallbackLatest = []Article{
	{
		ID:       "6",
		Title:    "Electric Aviation Takes Flight",
		Excerpt:  "The first commercial electric flight routes are opening this year, promising a greener future for regional travel.",
		Category: "Tech",
		Author:   "David Miller",
		Date:     "Oct 24, 2023",
		ImageURL: "https://images.unsplash.com/photo-1559067515-bf7d799b23e2?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "6 min read",
		URL:      "#",
	},
	{
		ID:       "7",
		Title:    "Diplomats Gather for Emergency Water Security Talks",
		Excerpt:  "Drought across three continents has pushed water rights to the top of the agenda.",
		Category: "World",
		Author:   "Amara Singh",
		Date:     "Oct 23, 2023",
		ImageURL: "https://images.unsplash.com/photo-1529107386315-e1a2ed48a620?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "5 min read",
		URL:      "#",
	},
	{
		ID:       "8",
		Title:    "The New Wave of Open-Source Hardware",
		Excerpt:  "From keyboards to satellites, hobbyists are publishing their schematics.",
		Category: "Tech",
		Author:   "Noah Becker",
		Date:     "Oct 22, 2023",
		ImageURL: "https://images.unsplash.com/photo-1518770660439-4636190af475?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "4 min read",
		URL:      "#",
	},
	{
		ID:       "9",
		Title:    "Museums Rethink the Blockbuster Exhibition",
		Excerpt:  "Smaller, slower shows are winning back local audiences.",
		Category: "Culture",
		Author:   "Claire Dubois",
		Date:     "Oct 21, 2023",
		ImageURL: "https://images.unsplash.com/photo-1554907984-15263bfd63bd?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "3 min read",
		URL:      "#",
	},
	{
		ID:       "10",
		Title:    "Startups Bet on Four-Day Weeks to Win Talent",
		Excerpt:  "Early data suggests productivity holds steady while attrition falls.",
		Category: "Business",
		Author:   "Priya Natarajan",
		Date:     "Oct 20, 2023",
		ImageURL: "https://images.unsplash.com/photo-1556761175-5973dc0f32e7?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "5 min read",
		URL:      "#",
	},
	{
		ID:       "11",
		Title:    "The Future of Remote Work",
		Excerpt:  "Hybrid models are settling into permanence.",
		Category: "Work",
		Author:   "Lisa Boss",
		Date:     "Oct 19, 2023",
		ImageURL: "https://images.unsplash.com/photo-1593642632823-8f78536788c6?q=80&w=2070&auto=format&fit=crop",
		ReadTime: "4 min read",
		URL:      "#",
	},
}

// FallbackFeatured 返回内置头条的副本。
func FallbackFeatured() []Article { return Clone(fallbackFeatured) }

// FallbackLatest 返回内置最新列表的副本。
func FallbackLatest() []Article { return Clone(fallbackLatest) }

// FallbackBreaking 返回内置快讯标题的副本。
func FallbackBreaking() []string {
	out := make([]string, len(fallbackBreaking))
	copy(out, fallbackBreaking)
	return out
}

// FallbackAll 返回全部内置文章（头条在前）。
func FallbackAll() []Article {
	all := make([]Article, 0, len(fallbackFeatured)+len(fallbackLatest))
	all = append(all, fallbackFeatured...)
	return append(all, fallbackLatest...)
}

// FindFallback 按 ID 查找内置文章。
func FindFallback(id string) (Article, bool) {
	if a, ok := Find(fallbackFeatured, id); ok {
		return a, true
	}
	return Find(fallbackLatest, id)
}
