// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"cmp"
	"fmt"
	"strings"
)

// Tag is one key/value pair attached to an entity.
type Tag struct {
	Key   string
	Value string
}

func (t Tag) String() string {
	return fmt.Sprintf("%s=%s", t.Key, t.Value)
}

// Tags is an exact-size view over an entity's tags, in the order they were
// encountered in the block.  It implements sort.Interface to allow sorting
// by key.
type Tags []Tag

// Len implements sort.Interface.
func (t Tags) Len() int { return len(t) }

// Less implements sort.Interface; tags order by key, then value.
func (t Tags) Less(i, j int) bool {
	if t[i].Key != t[j].Key {
		return t[i].Key < t[j].Key
	}

	return t[i].Value < t[j].Value
}

// Swap implements sort.Interface.
func (t Tags) Swap(i, j int) { t[i], t[j] = t[j], t[i] }

// Empty reports whether the entity carries no tags.
func (t Tags) Empty() bool { return len(t) == 0 }

// Get returns the value of the first tag with the given key.
func (t Tags) Get(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}

	return "", false
}

// Has reports whether a tag with the given key is present.
func (t Tags) Has(key string) bool {
	_, ok := t.Get(key)

	return ok
}

// Map copies the tags into a map, losing order.  Later duplicates win.
func (t Tags) Map() map[string]string {
	m := make(map[string]string, len(t))
	for _, tag := range t {
		m[tag.Key] = tag.Value
	}

	return m
}

func (t Tags) String() string {
	parts := make([]string, len(t))
	for i, tag := range t {
		parts[i] = tag.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// Members is an exact-size, ordered view over a relation's members.  It
// implements sort.Interface with the entity-kind precedence node < way <
// relation, then id, then role.
type Members []Member

// Len implements sort.Interface.
func (m Members) Len() int { return len(m) }

// Less implements sort.Interface.
func (m Members) Less(i, j int) bool {
	if c := cmp.Compare(m[i].Type, m[j].Type); c != 0 {
		return c < 0
	}

	if c := cmp.Compare(m[i].ID, m[j].ID); c != 0 {
		return c < 0
	}

	return m[i].Role < m[j].Role
}

// Swap implements sort.Interface.
func (m Members) Swap(i, j int) { m[i], m[j] = m[j], m[i] }
