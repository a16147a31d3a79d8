package stats

import (
	"math"
	"sort"

	mstats "github.com/aclements/go-moremath/stats"
)

// Polynomial approximations from Royston (1995), "Remark AS R94".
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

const swSmall = 1e-19

// Shapiro performs the Shapiro-Wilk test for normality. It returns the W
// statistic and the p-value of the null hypothesis that xs was drawn from
// a normal distribution. Missing values are ignored.
func Shapiro(xs []float64) (w, p float64, err error) {
	x, _ := Clean(xs)
	n := len(x)
	if n < 3 {
		return 0, 0, ErrSampleSize
	}
	sort.Float64s(x)
	if x[n-1]-x[0] < swSmall {
		return 0, 0, ErrZeroRange
	}

	a := shapiroCoefficients(n)

	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	var sax, ssa, ssx float64
	for i := range a {
		sax += a[i] * (x[n-1-i] - x[i])
		ssa += 2 * a[i] * a[i]
	}
	for _, v := range x {
		d := v - mean
		ssx += d * d
	}

	w = sax * sax / (ssa * ssx)
	if w > 1 {
		w = 1
	}
	return w, shapiroPValue(w, n), nil
}

// shapiroCoefficients returns the upper half of the antisymmetric weight
// vector, largest first.
func shapiroCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	an25 := an + 0.25
	m := make([]float64, nn2)
	var summ2 float64
	for i := range m {
		m[i] = mstats.StdNormal.InvCDF((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	var first int
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		first = 1
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		const pi6, stqr = 1.90985931710274, 1.04719755119660
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return math.Min(1, math.Max(0, p))
	}

	an := float64(n)
	w1 := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, an)
		if w1 >= gamma {
			return 1e-99
		}
		w1 = -math.Log(gamma - w1)
		mu = poly(swC3, an)
		sigma = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		mu = poly(swC5, xx)
		sigma = math.Exp(poly(swC6, xx))
	}
	return mstats.StdNormal.CDF(-(w1 - mu) / sigma)
}

// poly evaluates c[0] + c[1]*x + ... + c[len(c)-1]*x^(len(c)-1).
func poly(c []float64, x float64) float64 {
	r := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
