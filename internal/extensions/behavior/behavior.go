// Package behavior attaches registered script components to scene nodes and
// persists which script runs where, with which params.
package behavior

import (
	"encoding/json"
	"fmt"
	"slices"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
	"deltaeditor/internal/log"
)

const (
	Name = "BehaviorExtension"
	// ScriptsKey holds the scene's script list in scene metadata.
	ScriptsKey = "behaviorScripts"
	// NodeKey holds a node's attachments in its metadata.
	NodeKey = "behavior"
)

// Script is one script asset. Name is the registered script it instantiates;
// Code is the source text kept alongside it.
type Script struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Attachment binds a script to a node.
type Attachment struct {
	CodeID string         `json:"codeId"`
	Active bool           `json:"active"`
	Params map[string]any `json:"params,omitempty"`
}

// NodeMetadata lists the attachments of one node, or of the scene when
// Node is engine.SceneName.
type NodeMetadata struct {
	Node      string       `json:"node"`
	NodeID    string       `json:"nodeId"`
	Metadatas []Attachment `json:"metadatas"`

	live map[int]engine.Component
}

// Metadata is the persisted form of the extension.
type Metadata struct {
	Scripts []Script        `json:"scripts"`
	Nodes   []*NodeMetadata `json:"nodes"`
}

// legacyNode is the pre-asset format where each node carried its own code.
type legacyNode struct {
	Node      string `json:"node"`
	Metadatas []struct {
		Name   string         `json:"name"`
		Code   string         `json:"code"`
		Active bool           `json:"active"`
		Params map[string]any `json:"params"`
		Link   bool           `json:"link"`
	} `json:"metadatas"`
}

type Extension struct {
	scene *engine.Scene
}

func New(scene *engine.Scene) extensions.Extension {
	return &Extension{scene: scene}
}

func (e *Extension) AlwaysApply() bool { return false }

func (e *Extension) OnLoad(data json.RawMessage) error {
	if extensions.IsNull(data) {
		return nil
	}
	md, err := decode(data)
	if err != nil {
		return fmt.Errorf("decoding behavior metadata: %w", err)
	}
	setScripts(e.scene, md.Scripts)
	for _, nm := range md.Nodes {
		if nm.Node == engine.SceneName {
			setSceneMetadata(e.scene, nm)
			continue
		}
		n := e.scene.NodeByID(nm.NodeID)
		if n == nil {
			n = e.scene.NodeByName(nm.Node)
		}
		if n == nil {
			log.Debug(log.CatExt, "behavior target not found", "node", nm.Node, "id", nm.NodeID)
			continue
		}
		if old, err := nodeMetadata(n); err == nil && old != nil {
			detach(n, old)
		}
		setNodeMetadata(n, nm)
	}
	return nil
}

func decode(data json.RawMessage) (Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err == nil {
		return md, nil
	}
	var legacy []legacyNode
	if err := json.Unmarshal(data, &legacy); err != nil {
		return Metadata{}, err
	}
	for _, old := range legacy {
		nm := &NodeMetadata{Node: old.Node, NodeID: old.Node}
		for _, m := range old.Metadatas {
			if m.Link {
				continue
			}
			id := engine.NewID()
			md.Scripts = append(md.Scripts, Script{ID: id, Name: m.Name, Code: m.Code})
			nm.Metadatas = append(nm.Metadatas, Attachment{CodeID: id, Active: m.Active, Params: m.Params})
		}
		md.Nodes = append(md.Nodes, nm)
	}
	return md, nil
}

// OnApply instantiates every active attachment as a component on its node.
// Components a previous apply created are detached first.
func (e *Extension) OnApply(data json.RawMessage, rootURL string) error {
	if err := e.OnLoad(data); err != nil {
		return err
	}
	scripts, err := Scripts(e.scene)
	if err != nil {
		return err
	}
	for _, n := range e.scene.Nodes() {
		nm, err := nodeMetadata(n)
		if err != nil {
			return err
		}
		if nm == nil {
			continue
		}
		detach(n, nm)
		nm.live = make(map[int]engine.Component)
		for i, att := range nm.Metadatas {
			if !att.Active {
				continue
			}
			idx := slices.IndexFunc(scripts, func(s Script) bool { return s.ID == att.CodeID })
			if idx < 0 {
				log.Warn(log.CatExt, "behavior references a missing script", "node", n.Name, "codeId", att.CodeID)
				continue
			}
			c := engine.CreateScript(scripts[idx].Name, att.Params)
			if c == nil {
				log.Warn(log.CatExt, "script ignored: not registered", "script", scripts[idx].Name, "node", n.Name)
				continue
			}
			resolveRefs(e.scene, c, att.Params)
			n.AddManagedComponent(c)
			nm.live[i] = c
		}
	}
	return nil
}

// OnSerialize collects the scripts and every node's attachments. Params of
// instantiated attachments are read back from the live components.
func (e *Extension) OnSerialize() (any, error) {
	scripts, err := Scripts(e.scene)
	if err != nil {
		return nil, err
	}
	md := Metadata{Scripts: scripts, Nodes: []*NodeMetadata{}}
	for _, n := range e.scene.Nodes() {
		nm, err := nodeMetadata(n)
		if err != nil {
			return nil, err
		}
		if nm == nil {
			continue
		}
		for i, c := range nm.live {
			if _, props, ok := engine.SerializeScript(c); ok && i < len(nm.Metadatas) {
				nm.Metadatas[i].Params = props
			}
		}
		nm.Node = n.Name
		nm.NodeID = n.ID
		md.Nodes = append(md.Nodes, nm)
	}
	nm, err := sceneMetadata(e.scene)
	if err != nil {
		return nil, err
	}
	if nm != nil {
		nm.Node = engine.SceneName
		nm.NodeID = engine.SceneName
		md.Nodes = append(md.Nodes, nm)
	}
	if len(md.Scripts) == 0 && len(md.Nodes) == 0 {
		return nil, nil
	}
	if md.Scripts == nil {
		md.Scripts = []Script{}
	}
	return md, nil
}

// Scripts returns the script assets stored on the scene.
func Scripts(scene *engine.Scene) ([]Script, error) {
	var scripts []Script
	if err := extensions.Convert(scene.Metadata[ScriptsKey], &scripts); err != nil {
		return nil, fmt.Errorf("reading %s metadata: %w", ScriptsKey, err)
	}
	return scripts, nil
}

// AddScript stores a new script asset that instantiates the registered
// script name.
func AddScript(scene *engine.Scene, name, code string) (Script, error) {
	scripts, err := Scripts(scene)
	if err != nil {
		return Script{}, err
	}
	s := Script{ID: engine.NewID(), Name: name, Code: code}
	setScripts(scene, append(scripts, s))
	return s, nil
}

// Attach links a script to n, or to the scene when n is nil. The script
// runs once the extension is applied.
func Attach(scene *engine.Scene, n *engine.Node, codeID string, params map[string]any) error {
	var nm *NodeMetadata
	var err error
	if n == nil {
		nm, err = sceneMetadata(scene)
	} else {
		nm, err = nodeMetadata(n)
	}
	if err != nil {
		return err
	}
	if nm == nil {
		nm = &NodeMetadata{}
		if n == nil {
			nm.Node, nm.NodeID = engine.SceneName, engine.SceneName
			setSceneMetadata(scene, nm)
		} else {
			nm.Node, nm.NodeID = n.Name, n.ID
			setNodeMetadata(n, nm)
		}
	}
	nm.Metadatas = append(nm.Metadatas, Attachment{CodeID: codeID, Active: true, Params: params})
	return nil
}

// RemoveScript deletes a script asset and every attachment to it. Live
// components it created are detached.
func RemoveScript(scene *engine.Scene, id string) error {
	scripts, err := Scripts(scene)
	if err != nil {
		return err
	}
	for _, n := range scene.Nodes() {
		nm, err := nodeMetadata(n)
		if err != nil {
			return err
		}
		if nm != nil {
			unlink(nm, id, n)
		}
	}
	nm, err := sceneMetadata(scene)
	if err != nil {
		return err
	}
	if nm != nil {
		unlink(nm, id, nil)
	}
	setScripts(scene, slices.DeleteFunc(scripts, func(s Script) bool { return s.ID == id }))
	return nil
}

// resolveRefs points NodeRef params that name a node, rather than give its
// id, at that node's id.
func resolveRefs(scene *engine.Scene, c engine.Component, params map[string]any) {
	for key, v := range params {
		name, ok := v.(string)
		if !ok || engine.GetScriptFieldType(c, key) != "NodeRef" || scene.NodeByID(name) != nil {
			continue
		}
		if n := scene.NodeByName(name); n != nil {
			engine.ApplyScriptProperty(c, key, n.ID)
		}
	}
}

func detach(n *engine.Node, nm *NodeMetadata) {
	for _, c := range nm.live {
		n.RemoveComponent(c)
	}
	nm.live = nil
}

func unlink(nm *NodeMetadata, id string, n *engine.Node) {
	kept := nm.Metadatas[:0]
	live := make(map[int]engine.Component)
	for i, att := range nm.Metadatas {
		c := nm.live[i]
		if att.CodeID == id {
			if c != nil && n != nil {
				n.RemoveComponent(c)
			}
			continue
		}
		if c != nil {
			live[len(kept)] = c
		}
		kept = append(kept, att)
	}
	nm.Metadatas = kept
	nm.live = live
}

func nodeMetadata(n *engine.Node) (*NodeMetadata, error) {
	return lookup(n.Metadata, func(nm *NodeMetadata) { setNodeMetadata(n, nm) })
}

func sceneMetadata(scene *engine.Scene) (*NodeMetadata, error) {
	return lookup(scene.Metadata, func(nm *NodeMetadata) { setSceneMetadata(scene, nm) })
}

// lookup returns the typed attachments under NodeKey, converting and
// storing back a generic value parsed from a file.
func lookup(md map[string]any, store func(*NodeMetadata)) (*NodeMetadata, error) {
	v, ok := md[NodeKey]
	if !ok || v == nil {
		return nil, nil
	}
	if nm, ok := v.(*NodeMetadata); ok {
		return nm, nil
	}
	nm := &NodeMetadata{}
	if err := extensions.Convert(v, nm); err != nil {
		return nil, fmt.Errorf("reading %s metadata: %w", NodeKey, err)
	}
	store(nm)
	return nm, nil
}

func setNodeMetadata(n *engine.Node, nm *NodeMetadata) {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[NodeKey] = nm
}

func setSceneMetadata(scene *engine.Scene, nm *NodeMetadata) {
	if scene.Metadata == nil {
		scene.Metadata = make(map[string]any)
	}
	scene.Metadata[NodeKey] = nm
}

func setScripts(scene *engine.Scene, scripts []Script) {
	if scene.Metadata == nil {
		scene.Metadata = make(map[string]any)
	}
	scene.Metadata[ScriptsKey] = scripts
}
