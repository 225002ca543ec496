package app

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/sensor"
	"github.com/ayusman/mudra/internal/signal"
)

// HandleFrame classifies one frame into the current signal window.
func (a *App) HandleFrame(f *sensor.Frame) {
	a.mu.RLock()
	enabled, display := a.enabled, a.display
	a.mu.RUnlock()

	if !enabled || f == nil {
		return
	}

	a.classifier.Process(a.aggregator, f)

	if display.DisplayDebugDump && a.config.DebugSink != nil {
		a.config.DebugSink.Publish(f.Dump())
	}
}

// Poll reads the signal window into the buttons and advances the aggregator.
// Newly pressed buttons run their plugin bindings in the background.
func (a *App) Poll() []input.Change {
	var (
		changes   []input.Change
		indicator string
	)
	a.aggregator.Tick(func(st signal.State) {
		changes = a.bridge.Apply(st)
		indicator = input.Indicator(st)
	})

	a.mu.Lock()
	indicatorChanged := indicator != a.indicator
	a.indicator = indicator
	callbacks := append([]ChangeFunc(nil), a.callbacks...)
	a.mu.Unlock()

	for _, c := range changes {
		if c.Pressed {
			a.dispatch(c.Button)
		}
	}

	if len(changes) > 0 || indicatorChanged {
		for _, fn := range callbacks {
			fn(changes, indicator)
		}
	}

	return changes
}

// Wait blocks until every dispatched plugin run has finished.
func (a *App) Wait() {
	a.runs.Wait()
}

func (a *App) consume(frames <-chan *sensor.Frame) {
	defer a.loops.Done()

	for f := range frames {
		a.HandleFrame(f)
	}
	log.Printf("Sensor stream ended (%d frames dropped)", a.Dropped())
}

func (a *App) pollLoop(ctx context.Context) {
	defer a.loops.Done()

	ticker := time.NewTicker(a.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Poll()
		}
	}
}

// dispatch runs the enabled bindings of btn.
func (a *App) dispatch(btn input.Button) {
	st := a.config.Store
	if st == nil {
		return
	}

	bindings, err := st.Bindings().ListByButton(string(btn))
	if err != nil {
		log.Printf("Failed to load bindings for %s: %v", btn, err)
		return
	}

	for _, b := range bindings {
		p, err := a.pluginMgr.Resolve(b.PluginName, b.ActionName)
		if err != nil {
			log.Printf("Binding %s: %v", b.ID, err)
			continue
		}

		req := &plugin.Request{
			Action: b.ActionName,
			Button: string(btn),
			Config: b.Config,
			Params: b.Params,
		}

		a.runs.Add(1)
		go func(bindingID string) {
			defer a.runs.Done()

			resp, err := a.pluginExec.Execute(context.Background(), p, req)
			switch {
			case err != nil:
				log.Printf("Binding %s failed: %v", bindingID, err)
			case !resp.Success:
				log.Printf("Binding %s: plugin reported: %s", bindingID, resp.Error)
			}
		}(b.ID)
	}
}
