package sim

import (
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/ecs"
	"github.com/milk9111/possess/motion"
	"github.com/milk9111/possess/prefabs"
)

var (
	ActorComponent = ecs.NewComponent[control.Actor]()
	BodyComponent  = ecs.NewComponent[Body]()
)

// Body is an actor's physics body and the tuning motion applies to it.
type Body struct {
	Body    *cp.Body
	Shape   *cp.Shape
	Size    cp.Vector
	Profile motion.Profile
	Color   color.Color
}

var defaultColor = color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}

func newBody(space *cp.Space, spec prefabs.BodySpec) *Body {
	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = 16
	}
	if height <= 0 {
		height = 16
	}
	mass := spec.Mass
	if mass <= 0 {
		mass = 1
	}

	body := cp.NewBody(mass, cp.MomentForBox(mass, width, height))
	body.SetPosition(cp.Vector{X: spec.X, Y: spec.Y})
	body.SetAngularVelocity(0)

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(0)
	shape.SetElasticity(0)

	space.AddBody(body)
	space.AddShape(shape)

	b := &Body{
		Body:    body,
		Shape:   shape,
		Size:    cp.Vector{X: width, Y: height},
		Profile: motion.Profile{MoveSpeed: spec.MoveSpeed, JumpSpeed: spec.JumpSpeed},
		Color:   defaultColor,
	}
	if spec.Color != nil && spec.Color.Color != nil {
		b.Color = spec.Color.Color
	}
	return b
}

func newSpace(scene *prefabs.SceneSpec) *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: scene.Gravity.X, Y: scene.Gravity.Y})

	if scene.Ground > 0 {
		ground := cp.NewSegment(space.StaticBody,
			cp.Vector{X: -groundExtent, Y: scene.Ground},
			cp.Vector{X: groundExtent, Y: scene.Ground}, 1)
		ground.SetFriction(0.8)
		space.AddShape(ground)
	}
	return space
}

const groundExtent = 1e5
