package achievement

// Fixed slugs of the household-wide activity badges.
const (
	SlugMostActive  = "kampe"
	SlugLeastActive = "latmask"
)

// MinMonthlyCompletions is how many completions of a standard chore a month
// needs before anyone can win that chore's badge for the month.
const MinMonthlyCompletions = 5

type badgeInfo struct {
	title       string
	description string
}

// catalog lists badge titles in display order.
var catalog = []struct {
	slug string
	badgeInfo
}{
	{"diska", badgeInfo{"Diskgeni", "Diskade flest gånger under månaden"}},
	{"tvatta", badgeInfo{"Tvättkung", "Tvättade flest gånger under månaden"}},
	{"dammsuga", badgeInfo{"Dammsugarproffs", "Dammsög flest gånger under månaden"}},
	{"handla", badgeInfo{"Handlaren", "Handlade flest gånger under månaden"}},
	{"laga-mat", badgeInfo{"Mästerkocken", "Lagade mat flest gånger under månaden"}},
	{"ta-ut-soporna", badgeInfo{"Sopchampion", "Tog ut soporna flest gånger under månaden"}},
	{"stada-badrum", badgeInfo{"Badrumshjälten", "Städade badrummet flest gånger under månaden"}},
	{SlugMostActive, badgeInfo{"Kämpe", "Gjorde flest sysslor under månaden"}},
	{SlugLeastActive, badgeInfo{"Latmask", "Gjorde inga sysslor under månaden"}},
}

func lookupBadge(slug string) (badgeInfo, int, bool) {
	for i, b := range catalog {
		if b.slug == slug {
			return b.badgeInfo, i, true
		}
	}
	return badgeInfo{}, len(catalog), false
}
