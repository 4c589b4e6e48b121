package engine

const (
	AnimationFloat = iota
	AnimationVector3
	AnimationQuaternion
	AnimationMatrix
	AnimationColor3
)

const (
	LoopRelative = iota
	LoopCycle
	LoopConstant
)

type AnimationKey struct {
	Frame  float32   `json:"frame"`
	Values []float32 `json:"values"`
}

// Animation keyframes one property of its target.
type Animation struct {
	UID             uint64
	Name            string
	Property        string
	FramesPerSecond float32
	DataType        int
	LoopMode        int
	Keys            []AnimationKey
}

type AnimationData struct {
	Name           string         `json:"name"`
	Property       string         `json:"property"`
	FramePerSecond float32        `json:"framePerSecond"`
	DataType       int            `json:"dataType"`
	LoopBehavior   int            `json:"loopBehavior"`
	Keys           []AnimationKey `json:"keys"`
}

func NewAnimation(name, property string, fps float32, dataType, loopMode int) *Animation {
	return &Animation{
		UID:             NewUID(),
		Name:            name,
		Property:        property,
		FramesPerSecond: fps,
		DataType:        dataType,
		LoopMode:        loopMode,
	}
}

func (a *Animation) EntityUID() uint64 { return a.UID }

func (a *Animation) SetKeys(keys []AnimationKey) {
	a.Keys = cloneKeys(keys)
}

// Evaluate linearly interpolates between the keys around frame.
// Frames outside the key range clamp to the first or last key.
func (a *Animation) Evaluate(frame float32) []float32 {
	if len(a.Keys) == 0 {
		return nil
	}
	first, last := a.Keys[0], a.Keys[len(a.Keys)-1]
	if frame <= first.Frame {
		return append([]float32(nil), first.Values...)
	}
	if frame >= last.Frame {
		return append([]float32(nil), last.Values...)
	}
	for i := 1; i < len(a.Keys); i++ {
		next := a.Keys[i]
		if frame > next.Frame {
			continue
		}
		prev := a.Keys[i-1]
		t := (frame - prev.Frame) / (next.Frame - prev.Frame)
		out := make([]float32, len(prev.Values))
		for j := range out {
			if j < len(next.Values) {
				out[j] = prev.Values[j] + (next.Values[j]-prev.Values[j])*t
			} else {
				out[j] = prev.Values[j]
			}
		}
		return out
	}
	return append([]float32(nil), last.Values...)
}

func (a *Animation) Serialize() AnimationData {
	return AnimationData{
		Name:           a.Name,
		Property:       a.Property,
		FramePerSecond: a.FramesPerSecond,
		DataType:       a.DataType,
		LoopBehavior:   a.LoopMode,
		Keys:           cloneKeys(a.Keys),
	}
}

func ParseAnimation(data AnimationData) *Animation {
	a := NewAnimation(data.Name, data.Property, data.FramePerSecond, data.DataType, data.LoopBehavior)
	a.SetKeys(data.Keys)
	return a
}

func cloneKeys(keys []AnimationKey) []AnimationKey {
	if keys == nil {
		return nil
	}
	out := make([]AnimationKey, len(keys))
	for i, k := range keys {
		out[i] = AnimationKey{Frame: k.Frame, Values: append([]float32(nil), k.Values...)}
	}
	return out
}
