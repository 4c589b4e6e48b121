package engine

// ShadowGenerator renders a shadow map for one light.
type ShadowGenerator struct {
	UID                uint64
	Light              *Node
	MapSize            int
	Bias               float32
	Darkness           float32
	UsePoissonSampling bool
	RenderList         []*Node
}

type ShadowGeneratorData struct {
	LightID            string   `json:"lightId"`
	MapSize            int      `json:"mapSize"`
	Bias               float32  `json:"bias"`
	Darkness           float32  `json:"darkness"`
	UsePoissonSampling bool     `json:"usePoissonSampling"`
	RenderList         []string `json:"renderList"`
}

// NewShadowGenerator attaches a generator to light, replacing any previous one.
func NewShadowGenerator(mapSize int, light *Node) *ShadowGenerator {
	sg := &ShadowGenerator{
		UID:      NewUID(),
		Light:    light,
		MapSize:  mapSize,
		Bias:     0.00005,
		Darkness: 0,
	}
	light.ShadowGenerator = sg
	return sg
}

func (sg *ShadowGenerator) EntityUID() uint64 { return sg.UID }

// AddShadowCaster appends n to the render list once.
func (sg *ShadowGenerator) AddShadowCaster(n *Node) {
	for _, existing := range sg.RenderList {
		if existing == n {
			return
		}
	}
	sg.RenderList = append(sg.RenderList, n)
}

func (sg *ShadowGenerator) Serialize() ShadowGeneratorData {
	ids := make([]string, 0, len(sg.RenderList))
	for _, n := range sg.RenderList {
		ids = append(ids, n.ID)
	}
	return ShadowGeneratorData{
		LightID:            sg.Light.ID,
		MapSize:            sg.MapSize,
		Bias:               sg.Bias,
		Darkness:           sg.Darkness,
		UsePoissonSampling: sg.UsePoissonSampling,
		RenderList:         ids,
	}
}

// ParseShadowGenerator returns false when the light does not exist.
// Render list entries that cannot be found are dropped.
func ParseShadowGenerator(data ShadowGeneratorData, scene *Scene) (*ShadowGenerator, bool) {
	light := scene.NodeByID(data.LightID)
	if light == nil || light.Kind != KindLight {
		return nil, false
	}
	sg := NewShadowGenerator(data.MapSize, light)
	sg.Bias = data.Bias
	sg.Darkness = data.Darkness
	sg.UsePoissonSampling = data.UsePoissonSampling
	for _, id := range data.RenderList {
		if n := scene.NodeByID(id); n != nil {
			sg.AddShadowCaster(n)
		}
	}
	return sg, true
}
