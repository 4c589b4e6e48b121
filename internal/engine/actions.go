package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// Triggers understood by ActionManager.Fire.
const (
	TriggerPick        = "OnPickTrigger"
	TriggerPointerOver = "OnPointerOverTrigger"
	TriggerEveryFrame  = "OnEveryFrameTrigger"
)

// Action kinds.
const (
	ActionSetEnabled = "SetEnabledAction"
	ActionTranslate  = "TranslateAction"
)

// Action is one trigger → effect binding. An empty Target means the owner.
type Action struct {
	Trigger string    `json:"trigger"`
	Kind    string    `json:"kind"`
	Target  string    `json:"target,omitempty"`
	Value   []float32 `json:"value,omitempty"`
}

// ActionManager holds the interaction bindings of a mesh or of the scene.
type ActionManager struct {
	UID     uint64
	Owner   *Node
	Scene   *Scene
	Actions []Action

	suspended bool
}

type ActionManagerData struct {
	Name    string   `json:"name"`
	Actions []Action `json:"children"`
}

// NewActionManager attaches a manager to owner, or to the scene when owner is nil.
func NewActionManager(scene *Scene, owner *Node) *ActionManager {
	am := &ActionManager{
		UID:   NewUID(),
		Owner: owner,
		Scene: scene,
	}
	if owner != nil {
		owner.ActionManager = am
	} else {
		scene.ActionManager = am
	}
	return am
}

func (am *ActionManager) EntityUID() uint64 { return am.UID }

func (am *ActionManager) Register(a Action) {
	am.Actions = append(am.Actions, a)
}

func (am *ActionManager) Suspended() bool {
	return am.suspended
}

// Fire runs every action bound to trigger and returns how many ran.
// A suspended manager runs nothing.
func (am *ActionManager) Fire(trigger string) int {
	if am.suspended {
		return 0
	}
	fired := 0
	for _, a := range am.Actions {
		if a.Trigger != trigger {
			continue
		}
		target := am.Owner
		if a.Target != "" && am.Scene != nil {
			target = am.Scene.NodeByID(a.Target)
		}
		if target == nil {
			continue
		}
		switch a.Kind {
		case ActionSetEnabled:
			target.Active = len(a.Value) > 0 && a.Value[0] != 0
		case ActionTranslate:
			if len(a.Value) == 3 {
				target.Transform.Position = rl.Vector3Add(target.Transform.Position, Vec3([3]float32{a.Value[0], a.Value[1], a.Value[2]}))
			}
		default:
			continue
		}
		fired++
	}
	return fired
}

func (am *ActionManager) Serialize(name string) ActionManagerData {
	actions := make([]Action, len(am.Actions))
	for i, a := range am.Actions {
		a.Value = append([]float32(nil), a.Value...)
		actions[i] = a
	}
	return ActionManagerData{Name: name, Actions: actions}
}

// ParseActionManager rebuilds a manager onto owner, or onto the scene when owner is nil.
func ParseActionManager(data ActionManagerData, owner *Node, scene *Scene) *ActionManager {
	am := NewActionManager(scene, owner)
	for _, a := range data.Actions {
		a.Value = append([]float32(nil), a.Value...)
		am.Register(a)
	}
	return am
}
