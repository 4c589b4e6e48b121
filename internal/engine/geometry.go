package engine

// Geometry is vertex data shared by one or more meshes.
type Geometry struct {
	UID       uint64
	ID        string
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []int32
}

type GeometryData struct {
	ID        string    `json:"id"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals,omitempty"`
	UVs       []float32 `json:"uvs,omitempty"`
	Indices   []int32   `json:"indices"`
}

func (g *Geometry) EntityUID() uint64 { return g.UID }

// VertexCount returns the number of xyz triples.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

func (g *Geometry) Serialize() GeometryData {
	return GeometryData{
		ID:        g.ID,
		Positions: append([]float32(nil), g.Positions...),
		Normals:   append([]float32(nil), g.Normals...),
		UVs:       append([]float32(nil), g.UVs...),
		Indices:   append([]int32(nil), g.Indices...),
	}
}

// ParseGeometry registers vertex data in the scene. A geometry with the same
// id that is already registered is returned unchanged.
func ParseGeometry(data GeometryData, scene *Scene) *Geometry {
	if existing := scene.GeometryByID(data.ID); existing != nil {
		return existing
	}
	g := &Geometry{
		UID:       NewUID(),
		ID:        data.ID,
		Positions: append([]float32(nil), data.Positions...),
		Normals:   append([]float32(nil), data.Normals...),
		UVs:       append([]float32(nil), data.UVs...),
		Indices:   append([]int32(nil), data.Indices...),
	}
	scene.AddGeometry(g)
	return g
}

// NewBoxGeometry builds an axis-aligned cube centred on the origin.
func NewBoxGeometry(id string, size float32) *Geometry {
	if id == "" {
		id = NewID()
	}
	h := size / 2
	return &Geometry{
		UID: NewUID(),
		ID:  id,
		Positions: []float32{
			-h, -h, -h, h, -h, -h, h, h, -h, -h, h, -h,
			-h, -h, h, h, -h, h, h, h, h, -h, h, h,
		},
		Indices: []int32{
			0, 1, 2, 0, 2, 3, // back
			4, 6, 5, 4, 7, 6, // front
			0, 4, 5, 0, 5, 1, // bottom
			3, 2, 6, 3, 6, 7, // top
			0, 3, 7, 0, 7, 4, // left
			1, 5, 6, 1, 6, 2, // right
		},
	}
}
