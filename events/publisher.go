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

// Package events delivers schema change notifications to the catalog. A
// Dispatcher funnels all catalog mutations onto one goroutine, satisfying the
// catalog's single-writer requirement, and fans events out to registered
// subscribers.
package events

import "sync"

type Subscriber[T any] interface {
	OnEvent(event T)
}

// Publisher fans events out to its subscribers. Registration is safe from
// any goroutine.
type Publisher[T any] struct {
	mu          sync.RWMutex
	subscribers []Subscriber[T]
}

func NewPublisher[T any]() *Publisher[T] {
	return &Publisher[T]{}
}

func (p *Publisher[T]) Register(s Subscriber[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, s)
}

func (p *Publisher[T]) Deregister(s Subscriber[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sub := range p.subscribers {
		if sub == s {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			return
		}
	}
}

func (p *Publisher[T]) Publish(event T) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.subscribers {
		s.OnEvent(event)
	}
}
