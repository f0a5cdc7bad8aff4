// Package units centralizes length-unit normalization and the canonical
// (Z-up, right-handed) axis convention used throughout the import pipeline
// and the job hash's coordinate_convention field. Grounded on
// original_source luxera/core/units.py and luxera/core/coordinates.py.
package units

import (
	"strings"

	"luxera/internal/geom/numeric"
)

// UnitScaleToMeters returns the multiplier that converts a length expressed
// in unit to meters. Unknown units default to 1.0 (treated as meters),
// matching the original's permissive fallback.
func UnitScaleToMeters(unit string) float64 {
	switch strings.ToLower(unit) {
	case "m":
		return 1.0
	case "mm":
		return 0.001
	case "cm":
		return 0.01
	case "ft":
		return 0.3048
	case "in":
		return 0.0254
	default:
		return 1.0
	}
}

// ParsedLength is a length value normalized to meters alongside its
// original authoring value and unit, for round-tripping in reports.
type ParsedLength struct {
	ValueM        float64
	OriginalValue float64
	OriginalUnit  string
}

// ParseLength converts value in unit to a ParsedLength.
func ParseLength(value float64, unit string) ParsedLength {
	return ParsedLength{
		ValueM:        value * UnitScaleToMeters(unit),
		OriginalValue: value,
		OriginalUnit:  unit,
	}
}

// UpAxis enumerates the source up-axis convention.
type UpAxis string

const (
	UpAxisZ UpAxis = "Z_UP"
	UpAxisY UpAxis = "Y_UP"
)

// Handedness enumerates coordinate-system handedness.
type Handedness string

const (
	HandednessRight Handedness = "RIGHT_HANDED"
	HandednessLeft  Handedness = "LEFT_HANDED"
)

// AxisConvention describes a coordinate system. The zero value is NOT the
// canonical convention — use CanonicalAxisConvention().
type AxisConvention struct {
	UpAxis     UpAxis
	Handedness Handedness
}

// CanonicalAxisConvention is Luxera's canonical target: right-handed, Z-up.
func CanonicalAxisConvention() AxisConvention {
	return AxisConvention{UpAxis: UpAxisZ, Handedness: HandednessRight}
}

// AxisTransformReport records the human-readable description and the matrix
// of an axis conversion, retained by the import pipeline for NormalizedGeometry.
type AxisTransformReport struct {
	AxisTransformApplied string
	Matrix               numeric.Mat4
}

// AxisConversionMatrix returns the 4x4 homogeneous matrix that converts
// points authored in source into target's convention.
func AxisConversionMatrix(source, target AxisConvention) numeric.Mat4 {
	m := numeric.Identity4()
	if source.UpAxis != target.UpAxis {
		if source.UpAxis == UpAxisY && target.UpAxis == UpAxisZ {
			rot := numeric.Mat4{
				{1, 0, 0, 0},
				{0, 0, -1, 0},
				{0, 1, 0, 0},
				{0, 0, 0, 1},
			}
			m = rot.Mul(m)
		} else if source.UpAxis == UpAxisZ && target.UpAxis == UpAxisY {
			rot := numeric.Mat4{
				{1, 0, 0, 0},
				{0, 0, 1, 0},
				{0, -1, 0, 0},
				{0, 0, 0, 1},
			}
			m = rot.Mul(m)
		}
	}
	if source.Handedness != target.Handedness {
		flip := numeric.Identity4()
		flip[0][0] = -1
		m = flip.Mul(m)
	}
	return m
}

// ApplyAxisConversion transforms points from source into target's convention.
func ApplyAxisConversion(points []numeric.Vec3, source, target AxisConvention) []numeric.Vec3 {
	m := AxisConversionMatrix(source, target)
	return m.ApplyAll(points)
}

// DescribeAxisConversion builds the transform report retained by the import
// pipeline's NormalizedGeometry stage.
func DescribeAxisConversion(source, target AxisConvention) AxisTransformReport {
	m := AxisConversionMatrix(source, target)
	label := string(source.UpAxis) + "/" + string(source.Handedness) + "->" + string(target.UpAxis) + "/" + string(target.Handedness)
	return AxisTransformReport{AxisTransformApplied: label, Matrix: m}
}
