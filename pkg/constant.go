package pkg

// enum of penalty_policy. decides which endpoint's weather factor scales a directed edge.
type PenaltyPolicy uint8

const (
	PENALTY_DESTINATION PenaltyPolicy = iota
	PENALTY_ORIGIN
	PENALTY_MAX
	PENALTY_BOTH
)

func GetPenaltyPolicy(policy string) PenaltyPolicy {
	switch policy {
	case "destination":
		return PENALTY_DESTINATION
	case "origin":
		return PENALTY_ORIGIN
	case "max":
		return PENALTY_MAX
	case "both":
		return PENALTY_BOTH
	default:
		return PENALTY_DESTINATION
	}
}

func (p PenaltyPolicy) String() string {
	switch p {
	case PENALTY_ORIGIN:
		return "origin"
	case PENALTY_MAX:
		return "max"
	case PENALTY_BOTH:
		return "both"
	default:
		return "destination"
	}
}

const (
	INF_WEIGHT float64 = 1e15

	ASSUMED_SPEED_KMH       = 35.0
	MAX_SLOWDOWN_FACTOR     = 3.0
	MIN_STOPS               = 2
	DEFAULT_SOLVER_RESTARTS = 0

	LIGHT_RAIN_MM_PER_HOUR = 0.5
	HEAVY_RAIN_MM_PER_HOUR = 5.0
	LIGHT_RAIN_MULTIPLIER  = 1.10
	HEAVY_RAIN_MULTIPLIER  = 1.20
	LIGHT_SNOW_CM_PER_HOUR = 0.1
	HEAVY_SNOW_CM_PER_HOUR = 1.0
	LIGHT_SNOW_MULTIPLIER  = 1.20
	HEAVY_SNOW_MULTIPLIER  = 1.50
	STRONG_WIND_KMH        = 30.0
	STRONG_GUST_KMH        = 50.0
	STRONG_WIND_MULTIPLIER = 1.05
	STRONG_GUST_MULTIPLIER = 1.10
)

const (
	DEBUG = false
)
