package lighting

import (
	gomath "math"
)

// RadianceFunc returns the incoming radiance from unit direction d.
type RadianceFunc func(d [3]float64) [3]float64

// SH9 holds second-order spherical harmonic irradiance coefficients, already
// convolved with the cosine lobe: Irradiance evaluates them directly.
type SH9 [9][3]float32

// Real SH basis constants.
const (
	shY00 = 0.282095
	shY1  = 0.488603
	shY2  = 1.092548
	shY20 = 0.315392
	shY22 = 0.546274
)

// Cosine lobe convolution factors per band.
var shBand = [9]float64{
	gomath.Pi,
	2 * gomath.Pi / 3, 2 * gomath.Pi / 3, 2 * gomath.Pi / 3,
	gomath.Pi / 4, gomath.Pi / 4, gomath.Pi / 4, gomath.Pi / 4, gomath.Pi / 4,
}

func shBasis(d [3]float64) [9]float64 {
	x, y, z := d[0], d[1], d[2]
	return [9]float64{
		shY00,
		shY1 * y,
		shY1 * z,
		shY1 * x,
		shY2 * x * y,
		shY2 * y * z,
		shY20 * (3*z*z - 1),
		shY2 * x * z,
		shY22 * (x*x - y*y),
	}
}

// BakeSH projects an environment onto SH9 irradiance coefficients by
// integrating over a latitude-longitude grid with the given number of rows.
// The sample grid is scratch memory and is not retained.
func BakeSH(env RadianceFunc, rows int) SH9 {
	if rows < 4 {
		rows = 4
	}
	cols := rows * 2
	dTheta := gomath.Pi / float64(rows)
	dPhi := 2 * gomath.Pi / float64(cols)

	var acc [9][3]float64
	for r := 0; r < rows; r++ {
		theta := (float64(r) + 0.5) * dTheta
		sinT, cosT := gomath.Sin(theta), gomath.Cos(theta)
		weight := sinT * dTheta * dPhi
		for c := 0; c < cols; c++ {
			phi := (float64(c) + 0.5) * dPhi
			d := [3]float64{sinT * gomath.Cos(phi), cosT, sinT * gomath.Sin(phi)}
			l := env(d)
			basis := shBasis(d)
			for i := range basis {
				w := basis[i] * weight
				acc[i][0] += l[0] * w
				acc[i][1] += l[1] * w
				acc[i][2] += l[2] * w
			}
		}
	}

	var sh SH9
	for i := range acc {
		for ch := 0; ch < 3; ch++ {
			sh[i][ch] = float32(acc[i][ch] * shBand[i])
		}
	}
	return sh
}

// Irradiance evaluates the baked irradiance for unit normal n.
func (sh SH9) Irradiance(n [3]float64) [3]float64 {
	basis := shBasis(n)
	var out [3]float64
	for i := range basis {
		for ch := 0; ch < 3; ch++ {
			out[ch] += float64(sh[i][ch]) * basis[i]
		}
	}
	return out
}

// Flat returns the coefficients as 27 floats for a vec3[9] uniform.
func (sh SH9) Flat() []float32 {
	out := make([]float32, 0, 27)
	for i := range sh {
		out = append(out, sh[i][0], sh[i][1], sh[i][2])
	}
	return out
}

// RoomEnvironment is a neutral studio room: grey walls, a darker floor and a
// few bright light panels on the ceiling and sides.
func RoomEnvironment(d [3]float64) [3]float64 {
	x, y, z := d[0], d[1], d[2]
	switch {
	case y > 0.85:
		return gray(6)
	case x > 0.85 && gomath.Abs(y) < 0.3:
		return gray(3)
	case x < -0.85 && gomath.Abs(y) < 0.3:
		return gray(2)
	case z > 0.9:
		return gray(1.5)
	case y < -0.5:
		return gray(0.2)
	default:
		// Walls brighten slightly toward the ceiling.
		return gray(0.35 + 0.15*y)
	}
}

func gray(v float64) [3]float64 {
	return [3]float64{v, v, v}
}
