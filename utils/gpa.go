// utils/gpa.go
package utils

import (
	"math"

	"github.com/gewnthar/wiscflow/models"
)

// Grade points on the 4.0 scale.
const (
	pointsA  = 4.0
	pointsAB = 3.5
	pointsB  = 3.0
	pointsBC = 2.5
	pointsC  = 2.0
	pointsD  = 1.0
	pointsF  = 0.0
)

// CalculateGPA returns the count-weighted grade point average rounded to two
// decimals, or 0 when nobody received a letter grade.
func CalculateGPA(g models.GradeBuckets) float64 {
	total := g.Total()
	if total == 0 {
		return 0
	}

	points := float64(g.A)*pointsA +
		float64(g.AB)*pointsAB +
		float64(g.B)*pointsB +
		float64(g.BC)*pointsBC +
		float64(g.C)*pointsC +
		float64(g.D)*pointsD +
		float64(g.F)*pointsF

	return Round2(points / float64(total))
}

// WeightedAverageGPA combines per-term averages weighted by students graded.
// ok is false when there is no graded student at all, which callers store as NULL.
func WeightedAverageGPA(weights []models.GradeWeight) (avg float64, ok bool) {
	var students int
	var sum float64
	for _, w := range weights {
		students += w.TotalGraded
		sum += w.AvgGPA * float64(w.TotalGraded)
	}
	if students == 0 {
		return 0, false
	}
	return Round2(sum / float64(students)), true
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
