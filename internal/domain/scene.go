package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Color is an RGB triple with components in [0, 1]
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
}

// Actor is the renderable view of a single mesh: which mesh to draw and
// how. Rendering itself happens in an external viewer; an actor only
// carries the parameters.
type Actor struct {
	ID      string  `json:"id" yaml:"id"`
	MeshID  string  `json:"mesh_id" yaml:"mesh_id"`
	Color   Color   `json:"color" yaml:"color"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
	Visible bool    `json:"visible" yaml:"visible"`
}

// NewActor creates an actor for a mesh with the given color and opacity.
// Opacity is clamped to [0, 1].
func NewActor(meshID string, color Color, opacity float64) *Actor {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return &Actor{
		ID:      uuid.NewString(),
		MeshID:  meshID,
		Color:   color,
		Opacity: opacity,
		Visible: true,
	}
}

// Scene is an ordered list of actors to hand to a viewer
type Scene struct {
	Name   string  `json:"name" yaml:"name"`
	Actors []Actor `json:"actors" yaml:"actors"`
}

// NewScene creates an empty named scene
func NewScene(name string) *Scene {
	return &Scene{
		Name:   name,
		Actors: make([]Actor, 0),
	}
}

// AddActor appends an actor to the scene
func (s *Scene) AddActor(actor Actor) {
	s.Actors = append(s.Actors, actor)
}

// RemoveActor removes the actor with the given ID. Returns an error if
// no actor matches.
func (s *Scene) RemoveActor(id string) error {
	for i, a := range s.Actors {
		if a.ID == id {
			s.Actors = append(s.Actors[:i], s.Actors[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("actor %s not in scene", id)
}
