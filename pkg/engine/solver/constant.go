package solver

const (
	OR_OPT_MAX_CHAIN = 3

	NEIGHBORHOOD_TWO_OPT = "2opt"
	NEIGHBORHOOD_OR_OPT  = "oropt"
)
