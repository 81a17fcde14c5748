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
package tokenmap

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTokenMap() *TokenMap {
	m := NewTokenMap(zap.NewNop())
	m.SetPartitioner("org.apache.cassandra.dht.Murmur3Partitioner")
	return m
}

func TestSetPartitioner(t *testing.T) {
	m := NewTokenMap(zap.NewNop())

	m.SetPartitioner("org.apache.cassandra.dht.Murmur3Partitioner")
	assert.Equal(t, Murmur3Partitioner, m.Partitioner())

	m.SetPartitioner("RandomPartitioner")
	assert.Equal(t, RandomPartitioner, m.Partitioner())

	// unknown partitioner disables token parsing
	m.SetPartitioner("org.example.CustomPartitioner")
	assert.Equal(t, "", m.Partitioner())
	m.UpdateHost(Host{ID: uuid.New(), Address: "10.0.0.1"}, []string{"0"})
	m.Build()
	_, ok := m.FirstReplica(Murmur3Token(0))
	assert.False(t, ok)
}

func TestFirstReplica(t *testing.T) {
	m := newTestTokenMap()
	host1 := Host{ID: uuid.New(), Address: "10.0.0.1"}
	host2 := Host{ID: uuid.New(), Address: "10.0.0.2"}
	m.UpdateHost(host1, []string{"-100"})
	m.UpdateHost(host2, []string{"100"})
	m.Build()

	got, ok := m.FirstReplica(Murmur3Token(-200))
	require.True(t, ok)
	assert.Equal(t, host1, got)

	got, ok = m.FirstReplica(Murmur3Token(0))
	require.True(t, ok)
	assert.Equal(t, host2, got)

	got, ok = m.FirstReplica(Murmur3Token(100))
	require.True(t, ok)
	assert.Equal(t, host2, got)

	// past the last token the ring wraps around
	got, ok = m.FirstReplica(Murmur3Token(200))
	require.True(t, ok)
	assert.Equal(t, host1, got)
}

func TestUpdateHostReplacesTokens(t *testing.T) {
	m := newTestTokenMap()
	host := Host{ID: uuid.New(), Address: "10.0.0.1"}
	m.UpdateHost(host, []string{"0"})
	m.UpdateHost(host, []string{"500"})
	m.Build()

	other := Host{ID: uuid.New(), Address: "10.0.0.2"}
	m.UpdateHost(other, []string{"100"})
	m.Build()

	got, ok := m.FirstReplica(Murmur3Token(1))
	require.True(t, ok)
	assert.Equal(t, other, got)
}

func TestUpdateHostSkipsBadTokens(t *testing.T) {
	m := newTestTokenMap()
	host := Host{ID: uuid.New(), Address: "10.0.0.1"}
	m.UpdateHost(host, []string{"not-a-number", "42"})
	m.Build()

	got, ok := m.FirstReplica(Murmur3Token(42))
	require.True(t, ok)
	assert.Equal(t, host, got)
}

func TestRemoveHost(t *testing.T) {
	m := newTestTokenMap()
	host := Host{ID: uuid.New(), Address: "10.0.0.1"}
	m.UpdateHost(host, []string{"0"})
	m.RemoveHost(host)
	m.Build()

	_, ok := m.FirstReplica(Murmur3Token(0))
	assert.False(t, ok)
}

func TestKeyspaceReplication(t *testing.T) {
	m := newTestTokenMap()
	m.UpdateKeyspace("ks1", ReplicationSettings{
		StrategyClass:   "SimpleStrategy",
		StrategyOptions: map[string]string{"replication_factor": "3"},
	})

	settings, ok := m.ReplicationFor("ks1")
	require.True(t, ok)
	assert.Equal(t, "SimpleStrategy", settings.StrategyClass)

	m.DropKeyspace("ks1")
	_, ok = m.ReplicationFor("ks1")
	assert.False(t, ok)
}

func TestByteOrderedTokens(t *testing.T) {
	m := NewTokenMap(zap.NewNop())
	m.SetPartitioner("ByteOrderedPartitioner")

	host := Host{ID: uuid.New(), Address: "10.0.0.1"}
	m.UpdateHost(host, []string{"0x0001", "0xff00"})
	m.Build()

	got, ok := m.FirstReplica(Token{bytes: []byte{0x10}})
	require.True(t, ok)
	assert.Equal(t, host, got)
}

func TestClearKeepsPartitioner(t *testing.T) {
	m := newTestTokenMap()
	m.UpdateHost(Host{ID: uuid.New(), Address: "10.0.0.1"}, []string{"0"})
	m.UpdateKeyspace("ks1", ReplicationSettings{StrategyClass: "SimpleStrategy"})
	m.Build()

	m.Clear()

	assert.Equal(t, Murmur3Partitioner, m.Partitioner())
	_, ok := m.FirstReplica(Murmur3Token(0))
	assert.False(t, ok)
	_, ok = m.ReplicationFor("ks1")
	assert.False(t, ok)
}
