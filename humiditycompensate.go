/*
Empirical and stolen equations for humidity compensation.
Pick your poison, or edit your own. These are extra, driver itself does not use them

I do not have laboratory equipment so can not prove that these work
*/

package pms7003

import "math"

/*
Stolen from
https://github.com/piotrkpaul/esp8266-sds011
Humidity is relative humidity in percent
*/
func NormalizePM25(pm25 float64, humidity float64) float64 {
	return pm25 / (1.0 + 0.48756*math.Pow((humidity/100.0), 8.60068))
}

func NormalizePM10(pm10 float64, humidity float64) float64 {
	return pm10 / (1.0 + 0.81559*math.Pow((humidity/100.0), 5.83411))
}

// Compensated atmospheric values
type CompensatedReading struct {
	PM2_5 float64
	PM10  float64
}

func (p Reading) HumidityCompensated(humidity float64) CompensatedReading {
	return CompensatedReading{
		PM2_5: NormalizePM25(float64(p.PM2_5), humidity),
		PM10:  NormalizePM10(float64(p.PM10), humidity),
	}
}
