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

// Package tokenmap tracks host token ownership for token-aware routing. The
// schema catalog forwards partitioner, host and keyspace replication changes
// into it; it is only ever driven from the catalog's single writer thread.
package tokenmap

import (
	"encoding/hex"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rowkeylabs/cassandra-schema-catalog/global/types"
)

const (
	Murmur3Partitioner     = "Murmur3Partitioner"
	RandomPartitioner      = "RandomPartitioner"
	ByteOrderedPartitioner = "ByteOrderedPartitioner"
)

// Host is a cluster node that owns tokens on the ring.
type Host struct {
	ID      uuid.UUID
	Address string
}

// Token is one position on the ring, comparable within a single partitioner.
type Token struct {
	numeric *big.Int
	bytes   []byte
}

// Murmur3Token builds a token directly from a murmur3 hash value.
func Murmur3Token(v int64) Token {
	return Token{numeric: big.NewInt(v)}
}

func (t Token) Less(other Token) bool {
	if t.numeric != nil && other.numeric != nil {
		return t.numeric.Cmp(other.numeric) < 0
	}
	return string(t.bytes) < string(other.bytes)
}

type tokenOwner struct {
	token Token
	host  Host
}

// ReplicationSettings is a keyspace's replication strategy as captured from
// its schema row.
type ReplicationSettings struct {
	StrategyClass   string
	StrategyOptions map[string]string
}

// TokenMap owns the ring state. It is not safe for concurrent use; the
// catalog serializes all calls onto its writer thread.
type TokenMap struct {
	logger      *zap.Logger
	partitioner string
	hostTokens  map[uuid.UUID][]Token
	hosts       map[uuid.UUID]Host
	keyspaces   map[types.Keyspace]ReplicationSettings
	ring        []tokenOwner
}

func NewTokenMap(logger *zap.Logger) *TokenMap {
	return &TokenMap{
		logger:     logger,
		hostTokens: make(map[uuid.UUID][]Token),
		hosts:      make(map[uuid.UUID]Host),
		keyspaces:  make(map[types.Keyspace]ReplicationSettings),
	}
}

// SetPartitioner configures the partitioner from its fully qualified class
// name, e.g. "org.apache.cassandra.dht.Murmur3Partitioner".
func (m *TokenMap) SetPartitioner(partitionerClass string) {
	if i := strings.LastIndexByte(partitionerClass, '.'); i >= 0 {
		partitionerClass = partitionerClass[i+1:]
	}
	switch partitionerClass {
	case Murmur3Partitioner, RandomPartitioner, ByteOrderedPartitioner:
		m.partitioner = partitionerClass
	default:
		m.logger.Warn("unrecognized partitioner; token-aware routing disabled",
			zap.String("partitioner", partitionerClass))
		m.partitioner = ""
	}
}

func (m *TokenMap) Partitioner() string {
	return m.partitioner
}

// UpdateHost records the tokens owned by a host, replacing any previous
// assignment. Token strings that don't parse under the configured partitioner
// are skipped with a log entry.
func (m *TokenMap) UpdateHost(host Host, tokenStrings []string) {
	if m.partitioner == "" {
		return
	}
	tokens := make([]Token, 0, len(tokenStrings))
	for _, s := range tokenStrings {
		token, ok := m.parseToken(s)
		if !ok {
			m.logger.Error("unable to parse token for host",
				zap.String("token", s), zap.String("host", host.Address))
			continue
		}
		tokens = append(tokens, token)
	}
	m.hosts[host.ID] = host
	m.hostTokens[host.ID] = tokens
}

func (m *TokenMap) RemoveHost(host Host) {
	delete(m.hosts, host.ID)
	delete(m.hostTokens, host.ID)
}

// UpdateKeyspace records a keyspace's replication settings.
func (m *TokenMap) UpdateKeyspace(name types.Keyspace, settings ReplicationSettings) {
	m.keyspaces[name] = settings
}

func (m *TokenMap) DropKeyspace(name types.Keyspace) {
	delete(m.keyspaces, name)
}

// ReplicationFor returns the recorded replication settings for a keyspace.
func (m *TokenMap) ReplicationFor(name types.Keyspace) (ReplicationSettings, bool) {
	settings, ok := m.keyspaces[name]
	return settings, ok
}

// Build sorts the ring after a batch of host updates. Must be called before
// FirstReplica is consulted.
func (m *TokenMap) Build() {
	m.ring = m.ring[:0]
	for id, tokens := range m.hostTokens {
		host := m.hosts[id]
		for _, token := range tokens {
			m.ring = append(m.ring, tokenOwner{token: token, host: host})
		}
	}
	sort.Slice(m.ring, func(i, j int) bool {
		return m.ring[i].token.Less(m.ring[j].token)
	})
}

// FirstReplica returns the host owning the first token equal to or following
// the given token, wrapping around the ring.
func (m *TokenMap) FirstReplica(token Token) (Host, bool) {
	if len(m.ring) == 0 {
		return Host{}, false
	}
	i := sort.Search(len(m.ring), func(i int) bool {
		return !m.ring[i].token.Less(token)
	})
	if i == len(m.ring) {
		i = 0
	}
	return m.ring[i].host, true
}

// Clear drops all ring and keyspace state but keeps the partitioner.
func (m *TokenMap) Clear() {
	m.hostTokens = make(map[uuid.UUID][]Token)
	m.hosts = make(map[uuid.UUID]Host)
	m.keyspaces = make(map[types.Keyspace]ReplicationSettings)
	m.ring = nil
}

func (m *TokenMap) parseToken(s string) (Token, bool) {
	switch m.partitioner {
	case Murmur3Partitioner:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Token{}, false
		}
		return Token{numeric: big.NewInt(n)}, true
	case RandomPartitioner:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Token{}, false
		}
		return Token{numeric: n}, true
	case ByteOrderedPartitioner:
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return Token{}, false
		}
		return Token{bytes: b}, true
	default:
		return Token{}, false
	}
}
