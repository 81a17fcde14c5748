/*
 * Copyright (C) 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not
 * use this file except in compliance with the License. You may obtain a copy of
 * the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
 * WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
 * License for the specific language governing permissions and limitations under
 * the License.
 */

package events

import (
	"context"
	"errors"
	"sync"

	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/catalog"
	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
)

var ErrDispatcherClosed = errors.New("dispatcher closed")

const taskQueueSize = 64

// Dispatcher serializes catalog mutations onto a single goroutine. Schema
// change events from any connection, and refresh work submitted through
// Execute, all run on that goroutine in arrival order, so the catalog's
// mutating API is only ever entered from one place.
type Dispatcher struct {
	logger    *zap.Logger
	publisher *Publisher[*message.SchemaChangeEvent]

	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		logger:    logger,
		publisher: NewPublisher[*message.SchemaChangeEvent](),
		tasks:     make(chan func(), taskQueueSize),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for task := range d.tasks {
		task()
	}
}

// Register adds a subscriber for schema change events. Events are delivered
// on the dispatcher goroutine.
func (d *Dispatcher) Register(s Subscriber[*message.SchemaChangeEvent]) {
	d.publisher.Register(s)
}

func (d *Dispatcher) Deregister(s Subscriber[*message.SchemaChangeEvent]) {
	d.publisher.Deregister(s)
}

// Execute runs fn on the dispatcher goroutine and waits for it to finish.
func (d *Dispatcher) Execute(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	err := d.submit(ctx, func() {
		defer close(finished)
		fn()
	})
	if err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch delivers a schema change event to all subscribers on the
// dispatcher goroutine without waiting for them to run.
func (d *Dispatcher) Dispatch(ctx context.Context, event *message.SchemaChangeEvent) error {
	return d.submit(ctx, func() {
		d.logger.Debug("dispatching schema change event",
			zap.String("changeType", string(event.ChangeType)),
			zap.String("target", string(event.Target)),
			zap.String("keyspace", event.Keyspace),
			zap.String("object", event.Object))
		d.publisher.Publish(event)
	})
}

// submit holds a read lock across the send so Close cannot close the task
// channel while a send is in flight.
func (d *Dispatcher) submit(ctx context.Context, task func()) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the dispatcher after draining queued tasks.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.tasks)
		d.mu.Unlock()
	})
	<-d.done
}

// DropHandler applies DROPPED schema change events straight to the catalog.
// Created and updated entities need a system table round trip to describe, so
// those events are left to subscribers that can query.
type DropHandler struct {
	metadata *catalog.Metadata
	logger   *zap.Logger
}

func NewDropHandler(metadata *catalog.Metadata, logger *zap.Logger) *DropHandler {
	return &DropHandler{metadata: metadata, logger: logger}
}

func (h *DropHandler) OnEvent(event *message.SchemaChangeEvent) {
	if event.ChangeType != primitive.SchemaChangeTypeDropped {
		return
	}
	keyspace := types.Keyspace(event.Keyspace)
	switch event.Target {
	case primitive.SchemaChangeTargetKeyspace:
		h.metadata.DropKeyspace(keyspace)
	case primitive.SchemaChangeTargetTable:
		h.metadata.DropTable(keyspace, types.TableName(event.Object))
	case primitive.SchemaChangeTargetType:
		h.metadata.DropUserType(keyspace, types.TypeName(event.Object))
	case primitive.SchemaChangeTargetFunction:
		h.metadata.DropFunction(keyspace, catalog.FullFunctionName(event.Object, event.Arguments))
	case primitive.SchemaChangeTargetAggregate:
		h.metadata.DropAggregate(keyspace, catalog.FullFunctionName(event.Object, event.Arguments))
	default:
		h.logger.Warn("ignoring schema change event with unknown target",
			zap.String("target", string(event.Target)))
	}
}
