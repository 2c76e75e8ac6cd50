package scene_test

import (
	"math"
	"testing"

	"github.com/plus3/impstack/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachDetach(t *testing.T) {
	root := scene.NewNode("root")
	a := scene.NewNode("a")
	b := scene.NewNode("b")

	root.AttachChild(a)
	root.AttachChild(b)
	root.AttachChild(a)

	assert.Equal(t, []*scene.Node{a, b}, root.Children())
	assert.Same(t, root, a.Parent())

	assert.True(t, a.RemoveFromParent())
	assert.False(t, a.RemoveFromParent(), "detaching twice is safe")
	assert.Nil(t, a.Parent())
	assert.Equal(t, 1, root.ChildCount())
	assert.False(t, root.DetachChild(a))
}

func TestAttachMovesBetweenParents(t *testing.T) {
	first := scene.NewNode("first")
	second := scene.NewNode("second")
	child := scene.NewNode("child")

	first.AttachChild(child)
	second.AttachChild(child)

	assert.Equal(t, 0, first.ChildCount())
	assert.Same(t, second, child.Parent())
	assert.Equal(t, "second/child", child.Path())
}

func TestAttachCyclePanics(t *testing.T) {
	root := scene.NewNode("root")
	child := scene.NewNode("child")
	root.AttachChild(child)

	assert.Panics(t, func() { child.AttachChild(root) })
	assert.Panics(t, func() { root.AttachChild(root) })
}

func TestTransforms(t *testing.T) {
	root := scene.NewNode("root")
	child := scene.NewNode("child")
	root.AttachChild(child)

	root.SetLocalTranslation(scene.Vec3{X: 1, Y: 2})
	child.SetLocalTranslation(scene.Vec3{X: 3})
	assert.Equal(t, scene.Vec3{X: 4, Y: 2}, child.WorldTranslation())

	child.SetLocalRotation(scene.Quat{})
	assert.Equal(t, scene.IdentityQuat(), child.LocalRotation())

	q := scene.QuatFromYaw(math.Pi / 2)
	child.SetLocalRotation(q)
	assert.InDelta(t, math.Pi/2, child.LocalRotation().Yaw(), 1e-5)

	composed := q.Mul(q)
	assert.InDelta(t, math.Pi, math.Abs(float64(composed.Yaw())), 1e-5)
}

func TestClone(t *testing.T) {
	root := scene.NewNode("root")
	model := scene.NewNode("ship")
	model.Shape = &scene.Shape{Width: 2, Height: 3}
	hull := scene.NewNode("hull")
	model.AttachChild(hull)
	root.AttachChild(model)

	c := model.Clone()
	require.NotSame(t, model, c)
	assert.Nil(t, c.Parent())
	require.Equal(t, 1, c.ChildCount())
	assert.NotSame(t, hull, c.Children()[0])
	assert.Same(t, c, c.Children()[0].Parent())

	c.Shape.Width = 10
	assert.Equal(t, float32(2), model.Shape.Width)
}

func TestWalk(t *testing.T) {
	root := scene.NewNode("root")
	a := scene.NewNode("a")
	b := scene.NewNode("b")
	root.AttachChild(a)
	a.AttachChild(b)

	var names []string
	root.Walk(func(n *scene.Node) bool {
		names = append(names, n.Name)
		return n.Name != "a"
	})
	assert.Equal(t, []string{"root", "a"}, names)
}
