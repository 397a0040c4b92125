// Copyright 2025 Barmatch Systems
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


package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/barmatch/barmatch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(v), err
}

// MarshalProfile serializes a Profile to bytes.
func MarshalProfile(profile *core.Profile) []byte {
	buf := make([]byte, sizeProfile(profile))
	n := varint.Uint64.Marshal(uint64(profile.Id), buf)
	n += ord.String.Marshal(profile.Name, buf[n:])
	n += marshalStringSlice(profile.PracticeAreas, buf[n:])
	n += marshalStringSlice(profile.Languages, buf[n:])
	n += ord.String.Marshal(profile.Neighborhood, buf[n:])
	n += ord.String.Marshal(profile.City, buf[n:])
	n += varint.Float64.Marshal(profile.Lat, buf[n:])
	n += varint.Float64.Marshal(profile.Lng, buf[n:])
	n += marshalStringSlice(profile.BudgetTiers, buf[n:])
	n += ord.Bool.Marshal(profile.PaymentPlans, buf[n:])
	n += varint.Float64.Marshal(profile.Rating, buf[n:])
	n += varint.PositiveInt.Marshal(profile.ReviewCount, buf[n:])
	n += varint.Float64.Marshal(profile.ResponseTimeHours, buf[n:])
	n += ord.Bool.Marshal(profile.AvailableNow, buf[n:])
	n += marshalStringSlice(profile.CulturalBackgrounds, buf[n:])
	n += ord.String.Marshal(profile.CommunicationStyle, buf[n:])
	n += ord.String.Marshal(profile.Bio, buf[n:])
	n += marshalTime(profile.InsertedAt, buf[n:])
	marshalTime(profile.UpdatedAt, buf[n:])
	return buf
}

func sizeProfile(profile *core.Profile) int {
	size := varint.Uint64.Size(uint64(profile.Id))
	size += ord.String.Size(profile.Name)
	size += sizeStringSlice(profile.PracticeAreas)
	size += sizeStringSlice(profile.Languages)
	size += ord.String.Size(profile.Neighborhood)
	size += ord.String.Size(profile.City)
	size += varint.Float64.Size(profile.Lat)
	size += varint.Float64.Size(profile.Lng)
	size += sizeStringSlice(profile.BudgetTiers)
	size += ord.Bool.Size(profile.PaymentPlans)
	size += varint.Float64.Size(profile.Rating)
	size += varint.PositiveInt.Size(profile.ReviewCount)
	size += varint.Float64.Size(profile.ResponseTimeHours)
	size += ord.Bool.Size(profile.AvailableNow)
	size += sizeStringSlice(profile.CulturalBackgrounds)
	size += ord.String.Size(profile.CommunicationStyle)
	size += ord.String.Size(profile.Bio)
	size += sizeTime(profile.InsertedAt)
	size += sizeTime(profile.UpdatedAt)
	return size
}

// UnmarshalProfile deserializes a Profile from bytes.
func UnmarshalProfile(data []byte) (*core.Profile, error) {
	var (
		profile core.Profile
		n       int
	)

	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	profile.Id = core.ID(id)

	read := func(dst *string) {
		if err != nil {
			return
		}
		var m int
		*dst, m, err = ord.String.Unmarshal(data[n:])
		n += m
	}
	readSlice := func(dst *[]string) {
		if err != nil {
			return
		}
		var m int
		*dst, m, err = unmarshalStringSlice(data[n:])
		n += m
	}
	readFloat := func(dst *float64) {
		if err != nil {
			return
		}
		var m int
		*dst, m, err = varint.Float64.Unmarshal(data[n:])
		n += m
	}
	readBool := func(dst *bool) {
		if err != nil {
			return
		}
		var m int
		*dst, m, err = ord.Bool.Unmarshal(data[n:])
		n += m
	}
	readTime := func(dst *time.Time) {
		if err != nil {
			return
		}
		var m int
		*dst, m, err = unmarshalTime(data[n:])
		n += m
	}

	read(&profile.Name)
	readSlice(&profile.PracticeAreas)
	readSlice(&profile.Languages)
	read(&profile.Neighborhood)
	read(&profile.City)
	readFloat(&profile.Lat)
	readFloat(&profile.Lng)
	readSlice(&profile.BudgetTiers)
	readBool(&profile.PaymentPlans)
	readFloat(&profile.Rating)
	if err == nil {
		var m int
		profile.ReviewCount, m, err = varint.PositiveInt.Unmarshal(data[n:])
		n += m
	}
	readFloat(&profile.ResponseTimeHours)
	readBool(&profile.AvailableNow)
	readSlice(&profile.CulturalBackgrounds)
	read(&profile.CommunicationStyle)
	read(&profile.Bio)
	readTime(&profile.InsertedAt)
	readTime(&profile.UpdatedAt)

	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// MarshalFactSnapshot serializes a user's facts and turn counter to bytes.
func MarshalFactSnapshot(facts []core.Fact, turn int) []byte {
	size := varint.PositiveInt.Size(turn)
	size += varint.PositiveInt.Size(len(facts))
	for _, fact := range facts {
		size += sizeFact(fact)
	}

	buf := make([]byte, size)
	n := varint.PositiveInt.Marshal(turn, buf)
	n += varint.PositiveInt.Marshal(len(facts), buf[n:])
	for _, fact := range facts {
		n += marshalFact(fact, buf[n:])
	}
	return buf
}

// UnmarshalFactSnapshot deserializes a user's facts and turn counter.
func UnmarshalFactSnapshot(data []byte) ([]core.Fact, int, error) {
	turn, n, err := varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return nil, 0, err
	}
	count, m, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, 0, err
	}
	n += m

	facts := make([]core.Fact, count)
	for i := range facts {
		facts[i], m, err = unmarshalFact(data[n:])
		if err != nil {
			return nil, 0, err
		}
		n += m
	}
	return facts, turn, nil
}

// MarshalIDList serializes a list of profile IDs to bytes.
func MarshalIDList(ids []core.ID) []byte {
	size := varint.PositiveInt.Size(len(ids))
	for _, id := range ids {
		size += varint.Uint64.Size(uint64(id))
	}

	buf := make([]byte, size)
	n := varint.PositiveInt.Marshal(len(ids), buf)
	for _, id := range ids {
		n += varint.Uint64.Marshal(uint64(id), buf[n:])
	}
	return buf
}

// UnmarshalIDList deserializes a list of profile IDs from bytes.
func UnmarshalIDList(data []byte) ([]core.ID, error) {
	count, n, err := varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	ids := make([]core.ID, count)
	for i := range ids {
		v, m, err := varint.Uint64.Unmarshal(data[n:])
		if err != nil {
			return nil, err
		}
		ids[i] = core.ID(v)
		n += m
	}
	return ids, nil
}

func marshalFact(fact core.Fact, buf []byte) int {
	n := ord.String.Marshal(string(fact.Kind), buf)
	n += ord.String.Marshal(fact.Value, buf[n:])
	n += varint.Float64.Marshal(fact.Confidence, buf[n:])
	n += varint.PositiveInt.Marshal(fact.SourceTurn, buf[n:])
	return n
}

func sizeFact(fact core.Fact) int {
	size := ord.String.Size(string(fact.Kind))
	size += ord.String.Size(fact.Value)
	size += varint.Float64.Size(fact.Confidence)
	size += varint.PositiveInt.Size(fact.SourceTurn)
	return size
}

func unmarshalFact(data []byte) (core.Fact, int, error) {
	var fact core.Fact

	kind, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return fact, 0, err
	}
	fact.Kind = core.FactKind(kind)

	var m int
	fact.Value, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return fact, 0, err
	}
	n += m

	fact.Confidence, m, err = varint.Float64.Unmarshal(data[n:])
	if err != nil {
		return fact, 0, err
	}
	n += m

	fact.SourceTurn, m, err = varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return fact, 0, err
	}
	n += m

	return fact, n, nil
}

func marshalStringSlice(values []string, buf []byte) int {
	n := varint.PositiveInt.Marshal(len(values), buf)
	for _, value := range values {
		n += ord.String.Marshal(value, buf[n:])
	}
	return n
}

func sizeStringSlice(values []string) int {
	size := varint.PositiveInt.Size(len(values))
	for _, value := range values {
		size += ord.String.Size(value)
	}
	return size
}

func unmarshalStringSlice(data []byte) ([]string, int, error) {
	count, n, err := varint.PositiveInt.Unmarshal(data)
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, n, nil
	}

	values := make([]string, count)
	for i := range values {
		var m int
		values[i], m, err = ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, 0, err
		}
		n += m
	}
	return values, n, nil
}

// Timestamps travel as a presence flag plus microseconds since the Unix
// epoch, so the zero time round-trips exactly.
func marshalTime(t time.Time, buf []byte) int {
	n := ord.Bool.Marshal(!t.IsZero(), buf)
	if t.IsZero() {
		return n
	}
	n += varint.Int64.Marshal(t.UnixMicro(), buf[n:])
	return n
}

func sizeTime(t time.Time) int {
	size := ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += varint.Int64.Size(t.UnixMicro())
	}
	return size
}

func unmarshalTime(data []byte) (time.Time, int, error) {
	present, n, err := ord.Bool.Unmarshal(data)
	if err != nil || !present {
		return time.Time{}, n, err
	}
	micros, m, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return time.Time{}, 0, err
	}
	return time.UnixMicro(micros).UTC(), n + m, nil
}
