package engine

type Component interface {
	Start()
	Update(deltaTime float32)
	SetNode(n *Node)
	GetNode() *Node
}

// BaseComponent provides default implementation for Component interface
type BaseComponent struct {
	node *Node
}

func (b *BaseComponent) Start() {}

func (b *BaseComponent) Update(deltaTime float32) {}

func (b *BaseComponent) SetNode(n *Node) {
	b.node = n
}

func (b *BaseComponent) GetNode() *Node {
	return b.node
}
