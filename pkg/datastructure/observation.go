package datastructure

import (
	"time"
)

// WeatherObservation holds the hourly readings used to slow a stop down.
// fields the provider could not fill stay zero and contribute nothing.
type WeatherObservation struct {
	stopID          string
	precipitationMM float64
	snowfallCM      float64
	windSpeedKmh    float64
	windGustKmh     float64
	observedAt      time.Time
	source          string
}

func NewWeatherObservation(stopID string, precipitationMM, snowfallCM, windSpeedKmh, windGustKmh float64,
	observedAt time.Time, source string) WeatherObservation {
	return WeatherObservation{
		stopID:          stopID,
		precipitationMM: precipitationMM,
		snowfallCM:      snowfallCM,
		windSpeedKmh:    windSpeedKmh,
		windGustKmh:     windGustKmh,
		observedAt:      observedAt,
		source:          source,
	}
}

func (w WeatherObservation) GetStopID() string {
	return w.stopID
}

func (w WeatherObservation) GetPrecipitationMM() float64 {
	return w.precipitationMM
}

func (w WeatherObservation) GetSnowfallCM() float64 {
	return w.snowfallCM
}

func (w WeatherObservation) GetWindSpeedKmh() float64 {
	return w.windSpeedKmh
}

func (w WeatherObservation) GetWindGustKmh() float64 {
	return w.windGustKmh
}

func (w WeatherObservation) GetObservedAt() time.Time {
	return w.observedAt
}

func (w WeatherObservation) GetSource() string {
	return w.source
}
