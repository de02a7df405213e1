package pms7003

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestReadingValues(t *testing.T) {
	v := exampleReading.Values()
	test.That(t, len(v), test.ShouldEqual, len(ReadingFieldNames))
	test.That(t, v["pm2_5"], test.ShouldEqual, uint16(12))
	test.That(t, v["pm10"], test.ShouldEqual, uint16(18))
	test.That(t, v["n0_3"], test.ShouldEqual, uint16(1800))
	test.That(t, v["n10"], test.ShouldEqual, uint16(1))
}

func TestReadingWordsRoundtrip(t *testing.T) {
	r := Reading{PM1_0CF1: 1, PM2_5CF1: 2, PM10CF1: 3, PM1_0: 4, PM2_5: 5, PM10: 6,
		N0_3: 7, N0_5: 8, N1_0: 9, N2_5: 10, N5_0: 11, N10: 0xFFFF, Version: 0x80, ErrorCode: 0x03}
	test.That(t, readingFromWords(r.words()), test.ShouldResemble, r)
}

func TestReadingString(t *testing.T) {
	test.That(t, exampleReading.String(), test.ShouldEqual, "<Reading PM1.0=10 PM2.5=12 PM10=18>")
	test.That(t, exampleReading.ToString(), test.ShouldContainSubstring, ">0.3µm=1800")
}

func TestHumidityCompensation(t *testing.T) {
	dry := exampleReading.HumidityCompensated(0)
	test.That(t, dry.PM2_5, test.ShouldEqual, 12.0)
	test.That(t, dry.PM10, test.ShouldEqual, 18.0)

	wet := exampleReading.HumidityCompensated(90)
	test.That(t, wet.PM2_5, test.ShouldBeLessThan, 12.0)
	test.That(t, wet.PM10, test.ShouldBeLessThan, 18.0)
	test.That(t, math.Abs(wet.PM2_5-NormalizePM25(12, 90)), test.ShouldBeLessThan, 1e-9)
}
