package sim

import "testing"

func TestEnvironmentOutOfWorldSamplesUseDefaults(t *testing.T) {
	env := NewEnvironment(100, 1)
	if env.Solar(-1, -1, 1) != 0 {
		t.Error("expected out-of-world solar sample to be 0")
	}
	if env.Poison(200, 200) != 0 {
		t.Error("expected out-of-world poison sample to be 0")
	}
	if !env.Blocked(-5, 50) {
		t.Error("expected out-of-world coordinates to report blocked")
	}
}

func TestEnvironmentSamplesAreDeterministic(t *testing.T) {
	env := NewEnvironment(100, 42)
	a := env.Solar(33, 47, 1)
	b := env.Solar(33, 47, 1)
	if a != b {
		t.Errorf("expected repeated samples at the same coordinate to agree, got %f vs %f", a, b)
	}
}

func TestEnvironmentSolarScalesBySolarConstant(t *testing.T) {
	env := NewEnvironment(100, 1)
	half := env.Solar(50, 50, 0.5)
	full := env.Solar(50, 50, 1.0)
	if full != 0 && half != full/2 {
		t.Errorf("expected solar sample to scale linearly with solarConstant, got half=%f full=%f", half, full)
	}
}
