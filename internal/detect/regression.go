package detect

import (
	"errors"
	"math"
)

// Fit is an ordinary least-squares line y = Intercept + Slope*x.
type Fit struct {
	Slope     float64
	Intercept float64
	R         float64
	RSquared  float64
	// PValue is the two-sided significance of Slope != 0 under a Student t
	// distribution with n-2 degrees of freedom.
	PValue float64
	StdErr float64
	N      int
}

var errDegenerate = errors.New("regression needs at least 2 distinct x values")

// LinearRegression fits y against x. The p-value follows the textbook
// linregress derivation: t = r*sqrt(df/((1-r)(1+r))).
func LinearRegression(x, y []float64) (Fit, error) {
	n := len(x)
	if n != len(y) || n < 2 {
		return Fit{}, errDegenerate
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - mx
		dy := y[i] - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 {
		return Fit{}, errDegenerate
	}

	f := Fit{N: n}
	f.Slope = sxy / sxx
	f.Intercept = my - f.Slope*mx
	if syy != 0 {
		f.R = sxy / math.Sqrt(sxx*syy)
	}
	// Guard against rounding pushing |r| past 1.
	f.R = math.Max(-1, math.Min(1, f.R))
	f.RSquared = f.R * f.R

	if n == 2 {
		// A line through two points always fits; there is no residual variance.
		if f.R != 0 {
			f.PValue = 0
		} else {
			f.PValue = 1
		}
		return f, nil
	}
	df := float64(n - 2)
	const tiny = 1e-20
	t := f.R * math.Sqrt(df/((1-f.R+tiny)*(1+f.R+tiny)))
	f.PValue = studentTwoSided(t, df)
	f.StdErr = math.Sqrt((1 - f.RSquared) * syy / sxx / df)
	return f, nil
}

// studentTwoSided returns P(|T| >= |t|) for T ~ Student(df).
func studentTwoSided(t, df float64) float64 {
	if math.IsInf(t, 0) {
		return 0
	}
	x := df / (df + t*t)
	p := regIncBeta(df/2, 0.5, x)
	return math.Max(0, math.Min(1, p))
}

// regIncBeta is the regularized incomplete beta function I_x(a, b).
func regIncBeta(a, b, x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	lab, _ := math.Lgamma(a + b)
	front := math.Exp(lab - la - lb + a*math.Log(x) + b*math.Log1p(-x))
	// The continued fraction converges fast for x < (a+1)/(a+b+2); use the
	// symmetry relation otherwise.
	if x < (a+1)/(a+b+2) {
		return front * betaCF(a, b, x) / a
	}
	return 1 - front*betaCF(b, a, 1-x)/b
}

// betaCF evaluates the incomplete beta continued fraction with the modified
// Lentz method.
func betaCF(a, b, x float64) float64 {
	const (
		maxIter = 300
		eps     = 1e-15
		fpmin   = 1e-300
	)
	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d
	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm
		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c
		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del
		if math.Abs(del-1) < eps {
			break
		}
	}
	return h
}
