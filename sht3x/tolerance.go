// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht3x

import "fmt"

// Variant selects the accuracy class of the sensor. The value is the last
// digit of the part number.
type Variant uint8

const (
	SHT30 Variant = 0
	SHT31 Variant = 1
	SHT35 Variant = 5
)

// Valid reports whether the variant has an accuracy table.
func (v Variant) Valid() bool {
	return v == SHT30 || v == SHT31 || v == SHT35
}

func (v Variant) String() string {
	if !v.Valid() {
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
	return fmt.Sprintf("SHT3%d", uint8(v))
}

// TemperatureTolerance returns the ± accuracy in °C of a temperature reading
// of celsius degrees for the variant.
//
// The ranges are evaluated in order and the first match wins. For the SHT31
// the 0…90 °C plateau is tested before the 65 °C slope, so the slope only
// applies above 90 °C.
func TemperatureTolerance(celsius float64, v Variant) (float64, error) {
	t := celsius
	switch v {
	case SHT30:
		if 0 <= t && t <= 65 {
			return 0.2, nil
		} else if t > 65 {
			// 0.2 at 65 °C to 0.6 at 125 °C.
			return 0.0067*t - 0.2333, nil
		}
		// 0.6 at -40 °C to 0.2 at 0 °C.
		return -0.01*t + 0.2, nil
	case SHT31:
		if 0 <= t && t <= 90 {
			return 0.2, nil
		} else if t > 65 {
			// 0.2 at 90 °C to 0.5 at 125 °C.
			return 0.0086*t - 0.5714, nil
		}
		// 0.3 at -40 °C to 0.2 at 0 °C.
		return -0.0025*t + 0.2, nil
	case SHT35:
		switch {
		case t <= 0:
			return 0.2, nil
		case t <= 20:
			// 0.2 at 0 °C to 0.1 at 20 °C.
			return -0.005*t + 0.2, nil
		case t <= 60:
			return 0.1, nil
		case t <= 90:
			// 0.1 at 60 °C to 0.2 at 90 °C.
			return 0.0033*t - 0.1, nil
		default:
			// 0.2 at 90 °C to 0.4 at 125 °C.
			return 0.0057*t - 0.3143, nil
		}
	}
	return 0, &InvalidVariantError{Variant: v}
}

// HumidityTolerance returns the ± accuracy in %RH of a relative humidity
// reading of percentRH for the variant.
func HumidityTolerance(percentRH float64, v Variant) (float64, error) {
	rh := percentRH
	switch v {
	case SHT30:
		if 10 <= rh && rh <= 90 {
			return 2, nil
		} else if rh < 10 {
			// 4 at 0 %RH to 2 at 10 %RH.
			return -0.2*rh + 4, nil
		}
		// 2 at 90 %RH to 4 at 100 %RH.
		return 0.2*rh - 16, nil
	case SHT31:
		return 2, nil
	case SHT35:
		if rh <= 80 {
			return 1.5, nil
		}
		// 1.5 at 80 %RH to 2 at 100 %RH.
		return 0.025*rh - 0.5, nil
	}
	return 0, &InvalidVariantError{Variant: v}
}
