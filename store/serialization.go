// Copyright 2025 Poiesic Systems
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


package store

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

var (
	permissionsMUS = ord.NewSliceSer[string](ord.String)
	vectorMUS      = ord.NewSliceSer[float32](varint.Float32)
)

// DocumentMUS serializes Document values in the MUS format. The document
// shape is small and fixed, so the serializer is written by hand instead
// of generated. Field order is part of the stored format and must not
// change.
var DocumentMUS = documentMUS{}

type documentMUS struct{}

func (documentMUS) Size(d Document) (size int) {
	size = ord.String.Size(d.Id)
	size += ord.String.Size(d.Collection)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Content)
	size += ord.String.Size(d.ModifiedDate)
	size += ord.String.Size(d.SensitivityLabel)
	size += permissionsMUS.Size(d.Permissions)
	size += ord.String.Size(d.InformationBarrier)
	size += vectorMUS.Size(d.Vector)
	return
}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = ord.String.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Collection, bs[n:])
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Content, bs[n:])
	n += ord.String.Marshal(d.ModifiedDate, bs[n:])
	n += ord.String.Marshal(d.SensitivityLabel, bs[n:])
	n += permissionsMUS.Marshal(d.Permissions, bs[n:])
	n += ord.String.Marshal(d.InformationBarrier, bs[n:])
	n += vectorMUS.Marshal(d.Vector, bs[n:])
	return
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if d.Collection, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.ModifiedDate, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.SensitivityLabel, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Permissions, n1, err = permissionsMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.InformationBarrier, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if d.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *Document) []byte {
	buf := make([]byte, DocumentMUS.Size(*doc))
	DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*Document, error) {
	doc, _, err := DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}
