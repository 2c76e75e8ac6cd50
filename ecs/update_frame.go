package ecs

import "time"

type UpdateFrame struct {
	DeltaTime float64
	// Now is the scheduler clock reading for this frame
	Now      time.Time
	Tick     uint64
	Commands *Commands
	Storage  *Storage
}

func newUpdateFrame(dt float64, now time.Time, tick uint64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Now:       now,
		Tick:      tick,
		Commands:  newCommands(),
		Storage:   storage,
	}
}
