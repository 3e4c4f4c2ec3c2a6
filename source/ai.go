package source

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/possess/control"
	"github.com/milk9111/possess/input"
	"github.com/milk9111/possess/prefabs"
)

// AI is a follow-and-attack heuristic. It reads the world through the actor
// it currently drives and writes only through its controller. With no actor,
// or no visible target, it writes neutral input.
type AI struct {
	world       Perception
	target      string
	followRange float64
	attackRange float64
	jumpHeight  float64

	move    input.AxisID
	attack  input.ButtonID
	jump    input.ButtonID
	canJump bool
}

func NewAI(c *input.Contract, params prefabs.AIParams, world Perception) (*AI, error) {
	if params.Move == "" {
		params.Move = "move"
	}
	if params.Attack == "" {
		params.Attack = "attack"
	}
	move, err := prefabs.ResolveAxis(c, params.Move)
	if err != nil {
		return nil, err
	}
	attack, err := prefabs.ResolveButton(c, params.Attack)
	if err != nil {
		return nil, err
	}
	ai := &AI{
		world:       world,
		target:      params.Target,
		followRange: params.FollowRange,
		attackRange: params.AttackRange,
		jumpHeight:  params.JumpHeight,
		move:        move,
		attack:      attack,
	}
	if params.Jump != "" {
		if ai.jump, err = prefabs.ResolveButton(c, params.Jump); err != nil {
			return nil, err
		}
		ai.canJump = true
	}
	return ai, nil
}

func (ai *AI) String() string {
	return "ai:" + ai.target
}

// Retarget changes the actor the AI follows.
func (ai *AI) Retarget(name string) {
	ai.target = name
}

func (ai *AI) Update(_ control.Tick, c *control.Controller, a *control.Actor) error {
	var (
		move   cp.Vector
		attack bool
		jump   bool
	)

	if self, target, ok := ai.locate(a); ok {
		delta := target.Sub(self)
		if delta.Length() <= ai.followRange {
			if math.Abs(delta.X) <= ai.attackRange {
				attack = true
			} else {
				move = cp.Vector{X: axisSign(delta.X)}
			}
			// y grows downwards
			jump = ai.jumpHeight > 0 && -delta.Y > ai.jumpHeight
		}
	}

	if err := c.SetAxis(ai.move, move); err != nil {
		return err
	}
	if err := c.SetPressed(ai.attack, attack); err != nil {
		return err
	}
	if ai.canJump {
		return c.SetPressed(ai.jump, jump)
	}
	return nil
}

func (ai *AI) locate(a *control.Actor) (self, target cp.Vector, ok bool) {
	if a == nil || ai.world == nil || ai.target == "" || a.Name() == ai.target {
		return cp.Vector{}, cp.Vector{}, false
	}
	self, ok = ai.world.Position(a.Name())
	if !ok {
		return cp.Vector{}, cp.Vector{}, false
	}
	target, ok = ai.world.Position(ai.target)
	return self, target, ok
}
