package engine

// PostProcess is one full-screen pass attached to a camera.
type PostProcess struct {
	Name    string
	Kind    string
	Enabled bool
	Camera  *Node
	Params  map[string]float32
}

// AddPostProcess appends pp to the scene's pass list.
func (s *Scene) AddPostProcess(pp *PostProcess) {
	s.PostProcesses = append(s.PostProcesses, pp)
}

// RemovePostProcesses drops every pass whose name matches.
func (s *Scene) RemovePostProcesses(name string) {
	kept := s.PostProcesses[:0]
	for _, pp := range s.PostProcesses {
		if pp.Name != name {
			kept = append(kept, pp)
		}
	}
	s.PostProcesses = kept
}
