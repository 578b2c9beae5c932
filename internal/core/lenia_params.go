package core

import (
	"fmt"

	"gpu-ca/internal/compute"
)

// DefaultMaxRadius bounds the separable accumulator depth.
const DefaultMaxRadius = 20

// Uniform names shared by the continuous kernels.
const (
	UniformRadius = "u_radius"
	UniformDt     = "u_dt"
	UniformMu     = "u_mu"
	UniformSigma  = "u_sigma"
	UniformRho    = "u_rho"
	UniformOmega  = "u_omega"
)

// SetUniforms uploads p to program prog.
func (p LeniaParams) SetUniforms(dev compute.Device, prog compute.ProgramID) error {
	if err := dev.SetUniformInt(prog, UniformRadius, p.Radius); err != nil {
		return err
	}
	for name, v := range map[string]float32{
		UniformDt:    p.Dt,
		UniformMu:    p.Mu,
		UniformSigma: p.Sigma,
		UniformRho:   p.Rho,
		UniformOmega: p.Omega,
	} {
		if err := dev.SetUniformFloat(prog, name, v); err != nil {
			return err
		}
	}
	return nil
}

// LeniaUniforms reads the parameters a continuous kernel was dispatched with.
func LeniaUniforms(env *compute.Env) LeniaParams {
	return LeniaParams{
		Radius: env.Int(UniformRadius),
		Dt:     env.Float(UniformDt),
		Mu:     env.Float(UniformMu),
		Sigma:  env.Float(UniformSigma),
		Rho:    env.Float(UniformRho),
		Omega:  env.Float(UniformOmega),
	}
}

// CheckRadius validates r against [1, maxRadius].
func CheckRadius(r, maxRadius int) error {
	if r < 1 || r > maxRadius {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrRadiusRange, r, maxRadius)
	}
	return nil
}

// LeniaControls returns the HUD controls for the continuous parameters.
func LeniaControls(maxRadius int) []ParameterControl {
	return []ParameterControl{
		{Key: "radius", Label: "Radius", Type: ParamTypeInt, Step: 1, Min: 1, Max: float64(maxRadius), HasMin: true, HasMax: true},
		{Key: "dt", Label: "Delta time", Type: ParamTypeFloat, Step: 1, Min: 1, Max: 20, HasMin: true, HasMax: true},
		{Key: "mu", Label: "Mu", Type: ParamTypeFloat, Step: 0.005, Min: 0.005, Max: 1, HasMin: true, HasMax: true},
		{Key: "sigma", Label: "Sigma", Type: ParamTypeFloat, Step: 0.001, Min: 0.001, Max: 0.5, HasMin: true, HasMax: true},
		{Key: "rho", Label: "Rho", Type: ParamTypeFloat, Step: 0.005, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "omega", Label: "Omega", Type: ParamTypeFloat, Step: 0.005, Min: 0.005, Max: 1, HasMin: true, HasMax: true},
	}
}

// Snapshot renders p as a parameter group.
func (p LeniaParams) Snapshot() ParameterGroup {
	return ParameterGroup{
		Name: "Kernel",
		Params: []Parameter{
			IntParam("radius", "Radius", p.Radius),
			FloatParam("dt", "Delta time", float64(p.Dt)),
			FloatParam("mu", "Mu", float64(p.Mu)),
			FloatParam("sigma", "Sigma", float64(p.Sigma)),
			FloatParam("rho", "Rho", float64(p.Rho)),
			FloatParam("omega", "Omega", float64(p.Omega)),
		},
	}
}

// Set updates the parameter named key when v lies within its control
// bounds. It reports whether the value was accepted.
func (p *LeniaParams) Set(key string, v float64, maxRadius int) bool {
	ctrl, ok := FindControl(LeniaControls(maxRadius), key)
	if !ok || !ctrl.InRange(v) {
		return false
	}
	switch key {
	case "radius":
		if v != float64(int(v)) {
			return false
		}
		p.Radius = int(v)
	case "dt":
		p.Dt = float32(v)
	case "mu":
		p.Mu = float32(v)
	case "sigma":
		p.Sigma = float32(v)
	case "rho":
		p.Rho = float32(v)
	case "omega":
		p.Omega = float32(v)
	}
	return true
}
