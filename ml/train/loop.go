/*
 *	Copyright 2025 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package train

import (
	"github.com/pkg/errors"
	xslices "golang.org/x/exp/slices"
)

// Priority for hooks, the lowest values are run first. Defaults to 0, but
// negative values are ok.
type Priority int

// OnStartFn is the type of OnStart hooks.
type OnStartFn func(loop *Loop) error

// OnStepFn is the type of OnStep hooks. It receives the loss of the epoch
// that just finished.
type OnStepFn func(loop *Loop, loss float64) error

// OnEndFn is the type of OnEnd hooks. It receives the final loss.
type OnEndFn func(loop *Loop, loss float64) error

// Loop runs epochs of training, invoking Trainer.TrainStep once per epoch
// over the full dataset and calling the registered hooks.
//
// In itself it doesn't do much, but one can attach functionality to it,
// like a command-line progress bar (ui/commandline), plotting or
// early-stopping strategies.
//
// The public attributes are meant for reading only.
type Loop struct {
	// Trainer associated with this loop.
	Trainer *Trainer

	// Epoch currently being executed, starting from 0.
	Epoch int

	// StartEpoch and EndEpoch delimit the current run: Epoch goes from
	// StartEpoch to EndEpoch-1. If RunEpochs is called again, StartEpoch
	// resumes from the last run.
	StartEpoch, EndEpoch int

	// Losses records the loss of each epoch, across runs.
	Losses []float64

	// SharedData allows cross-tools to publish and consume information.
	// Keys and the semantics of their values are not specified by Loop.
	SharedData map[string]any

	onStart *priorityHooks[*hookWithName[OnStartFn]]
	onStep  *priorityHooks[*hookWithName[OnStepFn]]
	onEnd   *priorityHooks[*hookWithName[OnEndFn]]
}

// NewLoop creates a new training loop for the trainer.
func NewLoop(trainer *Trainer) *Loop {
	return &Loop{
		Trainer:    trainer,
		SharedData: make(map[string]any),
		onStart:    newPriorityHooks[*hookWithName[OnStartFn]](),
		onStep:     newPriorityHooks[*hookWithName[OnStepFn]](),
		onEnd:      newPriorityHooks[*hookWithName[OnEndFn]](),
	}
}

// OnStart adds a hook with the given name (for error reporting) and
// priority, called once before the first epoch of a run.
func (loop *Loop) OnStart(name string, priority Priority, fn OnStartFn) {
	loop.onStart.Add(priority, &hookWithName[OnStartFn]{name: name, fn: fn})
}

// OnStep adds a hook called after every epoch.
func (loop *Loop) OnStep(name string, priority Priority, fn OnStepFn) {
	loop.onStep.Add(priority, &hookWithName[OnStepFn]{name: name, fn: fn})
}

// OnEnd adds a hook called once, after the last epoch of a run.
func (loop *Loop) OnEnd(name string, priority Priority, fn OnEndFn) {
	loop.onEnd.Add(priority, &hookWithName[OnEndFn]{name: name, fn: fn})
}

// RunEpochs trains for numEpochs epochs over the dataset and returns the
// loss of the last epoch. Hook errors abort the run.
func (loop *Loop) RunEpochs(inputs, labels []float64, numEpochs int) (finalLoss float64, err error) {
	if numEpochs <= 0 {
		return 0, errors.Errorf("Loop.RunEpochs(numEpochs=%d): must be > 0", numEpochs)
	}
	if len(inputs) != len(labels) {
		return 0, errors.Errorf("Loop.RunEpochs: %d inputs for %d labels", len(inputs), len(labels))
	}
	loop.StartEpoch = loop.Epoch
	loop.EndEpoch = loop.StartEpoch + numEpochs

	if err = loop.start(); err != nil {
		return
	}
	for ; loop.Epoch < loop.EndEpoch; loop.Epoch++ {
		finalLoss = loop.Trainer.TrainStep(inputs, labels)
		loop.Losses = append(loop.Losses, finalLoss)
		if err = loop.step(finalLoss); err != nil {
			return
		}
	}
	err = loop.end(finalLoss)
	return
}

func (loop *Loop) start() (err error) {
	loop.onStart.Enumerate(func(hook *hookWithName[OnStartFn]) {
		if err != nil {
			// After the first error stop.
			return
		}
		err = hook.fn(loop)
		if err != nil {
			err = errors.WithMessagef(err, "OnStart(hook %q)", hook.name)
		}
	})
	return
}

func (loop *Loop) step(loss float64) (err error) {
	loop.onStep.Enumerate(func(hook *hookWithName[OnStepFn]) {
		if err != nil {
			return
		}
		err = hook.fn(loop, loss)
		if err != nil {
			err = errors.WithMessagef(err, "OnStep(hook %q)", hook.name)
		}
	})
	return
}

func (loop *Loop) end(loss float64) (err error) {
	loop.onEnd.Enumerate(func(hook *hookWithName[OnEndFn]) {
		if err != nil {
			return
		}
		err = hook.fn(loop, loss)
		if err != nil {
			err = errors.WithMessagef(err, "OnEnd(hook %q)", hook.name)
		}
	})
	return
}

// hookWithName is a hook with a name used for error reporting.
type hookWithName[F any] struct {
	name string
	fn   F
}

// priorityHooks organizes hooks by priority.
type priorityHooks[H any] struct {
	hooks map[Priority][]H
}

func newPriorityHooks[H any]() *priorityHooks[H] {
	return &priorityHooks[H]{
		hooks: make(map[Priority][]H),
	}
}

// Add hook at the given priority.
func (h *priorityHooks[H]) Add(priority Priority, hook H) {
	h.hooks[priority] = append(h.hooks[priority], hook)
}

// Enumerate calls fn for all registered hooks in priority order.
func (h *priorityHooks[H]) Enumerate(fn func(hook H)) {
	keys := make([]Priority, 0, len(h.hooks))
	for key := range h.hooks {
		keys = append(keys, key)
	}
	xslices.Sort(keys)
	for _, key := range keys {
		for _, hook := range h.hooks[key] {
			fn(hook)
		}
	}
}
