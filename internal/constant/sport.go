package constant

var KnownSports = []string{
	"badminton",
	"basketball",
	"cycling",
	"football",
	"futsal",
	"gym",
	"hiking",
	"padel",
	"running",
	"swimming",
	"table_tennis",
	"tennis",
	"volleyball",
	"yoga",
}

func IsKnownSport(sport string) bool {
	for _, known := range KnownSports {
		if known == sport {
			return true
		}
	}
	return false
}
