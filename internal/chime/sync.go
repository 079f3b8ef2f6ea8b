package chime

// Sync advances the world by dt and mirrors it into the render objects.
// The debug overlay shows the lines written during the previous frame and is
// refilled after its range is set. It returns the internal step count
// StepSimulation reports.
func (w *Windchime) Sync(dt float64) int {
	steps := w.World.StepSimulation(dt, w.opts.MaxSubSteps)

	if w.Debug != nil {
		lines := w.DebugLines
		if w.Debug.Index != 0 {
			lines.PositionNeedsUpdate = true
			lines.ColorNeedsUpdate = true
		}
		lines.SetDrawRange(0, w.Debug.Index)
		w.Debug.Update()
	}

	w.syncMeshes()
	w.frames++
	return steps
}

func (w *Windchime) syncMeshes() {
	for _, r := range w.Ropes {
		r.CopyNodes(r.Soft.Nodes)
	}
	for _, m := range w.Dynamic {
		ms := m.Body.MotionState()
		if ms == nil {
			continue
		}
		m.SetPose(ms.WorldTransform())
	}
}

// Frames is the number of Sync calls since Build.
func (w *Windchime) Frames() int { return w.frames }

// Time is the simulated time.
func (w *Windchime) Time() float64 { return w.World.Time() }
