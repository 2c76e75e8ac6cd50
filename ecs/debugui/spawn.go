package debugui

import "github.com/plus3/impstack/ecs"

// DebugUI holds the inspector windows spawned by SpawnDebugUI.
type DebugUI struct {
	Browser   *EntityBrowser
	Inspector *ComponentInspector
	Sets      *EntitySetDebugger
	Stats     *PerformanceStats
}

// SpawnDebugUI spawns one ImguiItem per inspector window. The inspector shows
// the entity selected in the browser. scheduler may be nil.
func SpawnDebugUI(storage *ecs.Storage, scheduler *ecs.Scheduler) *DebugUI {
	ui := &DebugUI{
		Browser:   NewEntityBrowser(100),
		Inspector: NewComponentInspector(),
		Sets:      NewEntitySetDebugger(),
		Stats:     NewPerformanceStats(120, scheduler),
	}
	timer := NewFrameTimer()

	storage.Spawn(ImguiItem{Render: func() { ui.Browser.Render(storage) }})
	storage.Spawn(ImguiItem{Render: func() { ui.Inspector.Render(storage, ui.Browser.SelectedEntity()) }})
	storage.Spawn(ImguiItem{Render: func() { ui.Sets.Render(storage) }})
	storage.Spawn(ImguiItem{Render: func() { ui.Stats.Render(storage, timer.GetDeltaTime()) }})
	return ui
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
}
