package ecs

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive = errors.New("ecs: entity not alive")
	ErrNilComponent   = errors.New("ecs: component is nil")
)

type ComponentID uint32

var nextComponentID atomic.Uint32

// Component identifies one component type. Declare handles at package level:
//
//	var BodyComponent = ecs.NewComponent[Body]()
type Component[T any] struct {
	id ComponentID
}

func NewComponent[T any]() Component[T] {
	return Component[T]{id: ComponentID(nextComponentID.Add(1))}
}
