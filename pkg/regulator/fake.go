package regulator

// FakeSensor returns scripted samples. Each Get consumes the next value; once
// exhausted the last value repeats.
type FakeSensor struct {
	Samples []uint16
	index   int
}

// NewFakeSensor creates a FakeSensor with the given samples.
func NewFakeSensor(samples ...uint16) *FakeSensor {
	return &FakeSensor{Samples: samples}
}

// Get returns the next scripted sample, or 0 when none are configured.
func (f *FakeSensor) Get() uint16 {
	if len(f.Samples) == 0 {
		return 0
	}
	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v
}

// FakePWM records compare register writes.
type FakePWM struct {
	Period uint32
	Writes []uint32
}

// NewFakePWM creates a FakePWM with the given register period.
func NewFakePWM(period uint32) *FakePWM {
	return &FakePWM{Period: period}
}

// Top returns the register period.
func (f *FakePWM) Top() uint32 {
	return f.Period
}

// Set records a compare register write.
func (f *FakePWM) Set(value uint32) {
	f.Writes = append(f.Writes, value)
}

// Last returns the latest written value, or 0 when nothing was written.
func (f *FakePWM) Last() uint32 {
	if len(f.Writes) == 0 {
		return 0
	}
	return f.Writes[len(f.Writes)-1]
}
