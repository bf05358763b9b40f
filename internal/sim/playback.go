package sim

// Playback is a step cursor over a timed plan.
type Playback struct {
	Step    int  // current step
	MaxStep int  // plan makespan
	Playing bool // whether Advance moves the cursor
}

// NewPlayback creates a paused cursor at step 0.
func NewPlayback(maxStep int) *Playback {
	return &Playback{MaxStep: maxStep}
}

// TogglePlay toggles playback on/off. Playing from the end restarts.
func (p *Playback) TogglePlay() {
	p.Playing = !p.Playing
	if p.Playing && p.Step >= p.MaxStep {
		p.Step = 0
	}
}

// Play starts playback.
func (p *Playback) Play() { p.Playing = true }

// Pause stops playback.
func (p *Playback) Pause() { p.Playing = false }

// Reset rewinds to the beginning and pauses.
func (p *Playback) Reset() {
	p.Step = 0
	p.Playing = false
}

// Advance moves one step if playing. It stops at the end and reports
// whether the cursor moved.
func (p *Playback) Advance() bool {
	if !p.Playing {
		return false
	}
	if p.Step >= p.MaxStep {
		p.Playing = false
		return false
	}
	p.Step++
	if p.Step >= p.MaxStep {
		p.Playing = false
	}
	return true
}

// SetStep moves the cursor, clamped to [0, MaxStep].
func (p *Playback) SetStep(s int) {
	p.Step = min(max(s, 0), p.MaxStep)
}

// StepForward pauses and moves one step forward.
func (p *Playback) StepForward() {
	p.Pause()
	p.SetStep(p.Step + 1)
}

// StepBack pauses and moves one step back.
func (p *Playback) StepBack() {
	p.Pause()
	p.SetStep(p.Step - 1)
}

// Done reports whether the cursor is at the last step.
func (p *Playback) Done() bool { return p.Step >= p.MaxStep }

// Progress returns current progress as 0-1.
func (p *Playback) Progress() float64 {
	if p.MaxStep <= 0 {
		return 1
	}
	return float64(p.Step) / float64(p.MaxStep)
}
