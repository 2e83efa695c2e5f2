package weather

import (
	"github.com/Rodgta01/RouteStorm/pkg"
	da "github.com/Rodgta01/RouteStorm/pkg/datastructure"
	"github.com/spf13/viper"
)

// RiskConfig holds the slowdown thresholds. each band is a multiplier that
// kicks in once the reading crosses its threshold, heavier band replaces the
// lighter one for the same term.
type RiskConfig struct {
	LightRainMM   float64
	HeavyRainMM   float64
	LightRainMult float64
	HeavyRainMult float64

	LightSnowCM   float64
	HeavySnowCM   float64
	LightSnowMult float64
	HeavySnowMult float64

	StrongWindKmh  float64
	StrongGustKmh  float64
	StrongWindMult float64
	StrongGustMult float64

	MaxFactor float64
}

func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		LightRainMM:   pkg.LIGHT_RAIN_MM_PER_HOUR,
		HeavyRainMM:   pkg.HEAVY_RAIN_MM_PER_HOUR,
		LightRainMult: pkg.LIGHT_RAIN_MULTIPLIER,
		HeavyRainMult: pkg.HEAVY_RAIN_MULTIPLIER,

		LightSnowCM:   pkg.LIGHT_SNOW_CM_PER_HOUR,
		HeavySnowCM:   pkg.HEAVY_SNOW_CM_PER_HOUR,
		LightSnowMult: pkg.LIGHT_SNOW_MULTIPLIER,
		HeavySnowMult: pkg.HEAVY_SNOW_MULTIPLIER,

		StrongWindKmh:  pkg.STRONG_WIND_KMH,
		StrongGustKmh:  pkg.STRONG_GUST_KMH,
		StrongWindMult: pkg.STRONG_WIND_MULTIPLIER,
		StrongGustMult: pkg.STRONG_GUST_MULTIPLIER,

		MaxFactor: pkg.MAX_SLOWDOWN_FACTOR,
	}
}

// RiskConfigFromViper reads the thresholds from the loaded config file,
// unset keys keep the defaults above.
func RiskConfigFromViper() RiskConfig {
	def := DefaultRiskConfig()

	viper.SetDefault("WEATHER_LIGHT_RAIN_MM", def.LightRainMM)
	viper.SetDefault("WEATHER_HEAVY_RAIN_MM", def.HeavyRainMM)
	viper.SetDefault("WEATHER_LIGHT_RAIN_MULT", def.LightRainMult)
	viper.SetDefault("WEATHER_HEAVY_RAIN_MULT", def.HeavyRainMult)
	viper.SetDefault("WEATHER_LIGHT_SNOW_CM", def.LightSnowCM)
	viper.SetDefault("WEATHER_HEAVY_SNOW_CM", def.HeavySnowCM)
	viper.SetDefault("WEATHER_LIGHT_SNOW_MULT", def.LightSnowMult)
	viper.SetDefault("WEATHER_HEAVY_SNOW_MULT", def.HeavySnowMult)
	viper.SetDefault("WEATHER_STRONG_WIND_KMH", def.StrongWindKmh)
	viper.SetDefault("WEATHER_STRONG_GUST_KMH", def.StrongGustKmh)
	viper.SetDefault("WEATHER_STRONG_WIND_MULT", def.StrongWindMult)
	viper.SetDefault("WEATHER_STRONG_GUST_MULT", def.StrongGustMult)
	viper.SetDefault("WEATHER_MAX_FACTOR", def.MaxFactor)

	return RiskConfig{
		LightRainMM:   viper.GetFloat64("WEATHER_LIGHT_RAIN_MM"),
		HeavyRainMM:   viper.GetFloat64("WEATHER_HEAVY_RAIN_MM"),
		LightRainMult: viper.GetFloat64("WEATHER_LIGHT_RAIN_MULT"),
		HeavyRainMult: viper.GetFloat64("WEATHER_HEAVY_RAIN_MULT"),

		LightSnowCM:   viper.GetFloat64("WEATHER_LIGHT_SNOW_CM"),
		HeavySnowCM:   viper.GetFloat64("WEATHER_HEAVY_SNOW_CM"),
		LightSnowMult: viper.GetFloat64("WEATHER_LIGHT_SNOW_MULT"),
		HeavySnowMult: viper.GetFloat64("WEATHER_HEAVY_SNOW_MULT"),

		StrongWindKmh:  viper.GetFloat64("WEATHER_STRONG_WIND_KMH"),
		StrongGustKmh:  viper.GetFloat64("WEATHER_STRONG_GUST_KMH"),
		StrongWindMult: viper.GetFloat64("WEATHER_STRONG_WIND_MULT"),
		StrongGustMult: viper.GetFloat64("WEATHER_STRONG_GUST_MULT"),

		MaxFactor: viper.GetFloat64("WEATHER_MAX_FACTOR"),
	}
}

// RiskModel turns one stop's observation into a slowdown factor >= 1.0.
// rain, snow and wind terms are each monotone in their reading, the final
// factor is their product capped at MaxFactor. a nil observation means no
// data and never slows a stop down.
type RiskModel struct {
	cfg RiskConfig
}

func NewRiskModel(cfg RiskConfig) *RiskModel {
	if cfg.MaxFactor < 1.0 {
		cfg.MaxFactor = 1.0
	}
	return &RiskModel{cfg: cfg}
}

func NewDefaultRiskModel() *RiskModel {
	return NewRiskModel(DefaultRiskConfig())
}

func (m *RiskModel) SlowdownFactor(obs *da.WeatherObservation) float64 {
	if obs == nil {
		return 1.0
	}

	factor := m.rainTerm(obs.GetPrecipitationMM()) *
		m.snowTerm(obs.GetSnowfallCM()) *
		m.windTerm(obs.GetWindSpeedKmh(), obs.GetWindGustKmh())

	if factor > m.cfg.MaxFactor {
		factor = m.cfg.MaxFactor
	}
	if factor < 1.0 {
		factor = 1.0
	}
	return factor
}

func (m *RiskModel) rainTerm(precipitationMM float64) float64 {
	switch {
	case precipitationMM >= m.cfg.HeavyRainMM:
		return m.cfg.HeavyRainMult
	case precipitationMM >= m.cfg.LightRainMM:
		return m.cfg.LightRainMult
	default:
		return 1.0
	}
}

func (m *RiskModel) snowTerm(snowfallCM float64) float64 {
	switch {
	case snowfallCM >= m.cfg.HeavySnowCM:
		return m.cfg.HeavySnowMult
	case snowfallCM >= m.cfg.LightSnowCM:
		return m.cfg.LightSnowMult
	default:
		return 1.0
	}
}

func (m *RiskModel) windTerm(windSpeedKmh, windGustKmh float64) float64 {
	term := 1.0
	if windSpeedKmh >= m.cfg.StrongWindKmh {
		term *= m.cfg.StrongWindMult
	}
	if windGustKmh >= m.cfg.StrongGustKmh {
		term *= m.cfg.StrongGustMult
	}
	return term
}

func (m *RiskModel) GetMaxFactor() float64 {
	return m.cfg.MaxFactor
}
