package opt

// Scheduler adjusts an optimizer's learning rate once per epoch.
type Scheduler interface {
	Step()
	GetLR() float64
}

// StepLR decays the learning rate by gamma every stepSize epochs.
type StepLR struct {
	optimizer Optimizer
	stepSize  int
	gamma     float64
	lastEpoch int
}

func NewStepLR(optimizer Optimizer, stepSize int, gamma float64) *StepLR {
	return &StepLR{
		optimizer: optimizer,
		stepSize:  stepSize,
		gamma:     gamma,
	}
}

func (s *StepLR) Step() {
	s.lastEpoch++
	if s.stepSize > 0 && s.lastEpoch%s.stepSize == 0 {
		s.optimizer.SetLR(s.optimizer.LR() * s.gamma)
	}
}

func (s *StepLR) GetLR() float64 {
	return s.optimizer.LR()
}
